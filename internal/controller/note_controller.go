package controller

import (
	"errors"
	"strconv"
	"time"
	"toast_backend/internal/service"
	"toast_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NoteController struct {
	NoteService *service.NoteService
}

func NewNoteController(noteService *service.NoteService) *NoteController {
	return &NoteController{NoteService: noteService}
}

// Create godoc
// @Summary Create a text reflection
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateNoteInput true "Note content"
// @Success 201 {object} util.Response{data=model.Note}
// @Failure 400 {object} util.Response "Empty content"
// @Router /api/notes [post]
func (c *NoteController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var input service.CreateNoteInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	note, err := c.NoteService.Create(claims.UserID, input)
	if err != nil {
		if errors.Is(err, util.ErrNoContent) {
			util.BadRequest(ctx, "note content is empty")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, note)
}

// CreateAudio godoc
// @Summary Create a voice reflection
// @Description Uploads an audio recording, probes its duration and stores it as a note. An optional content field carries a caption or transcript.
// @Tags notes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param audio formData file true "Audio file (mp3, m4a, wav, ogg, webm, aac)"
// @Param content formData string false "Caption or transcript"
// @Success 201 {object} util.Response{data=model.Note}
// @Failure 400 {object} util.Response "Bad upload"
// @Router /api/notes/audio [post]
func (c *NoteController) CreateAudio(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	file, err := ctx.FormFile("audio")
	if err != nil {
		util.BadRequest(ctx, "missing audio file")
		return
	}

	note, err := c.NoteService.CreateAudio(ctx.Request.Context(), claims.UserID, ctx.PostForm("content"), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, note)
}

// List godoc
// @Summary List my reflections
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/notes [get]
func (c *NoteController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	notes, total, err := c.NoteService.List(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: notes, Total: total, Page: page, Limit: limit})
}

// Week godoc
// @Summary Notes in one week window
// @Description Lists the notes in the week containing the given date, resolved in the caller's timezone. Defaults to the current week.
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param date query string false "Any date inside the wanted week (2006-01-02)"
// @Success 200 {object} util.Response{data=[]model.Note}
// @Router /api/notes/week [get]
func (c *NoteController) Week(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	at := time.Now()
	dateOnly := false
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.Parse(util.DateFormat, raw)
		if err != nil {
			util.BadRequest(ctx, "invalid date, want YYYY-MM-DD")
			return
		}
		at, dateOnly = parsed, true
	}

	notes, err := c.NoteService.ListWeek(claims.UserID, at, dateOnly)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, notes)
}

// Get godoc
// @Summary Fetch one reflection
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} util.Response{data=model.Note}
// @Failure 404 {object} util.Response
// @Router /api/notes/{id} [get]
func (c *NoteController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	note, err := c.NoteService.Get(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, note)
}

// Update godoc
// @Summary Edit a reflection's text
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Param body body service.UpdateNoteInput true "New content"
// @Success 200 {object} util.Response{data=model.Note}
// @Failure 404 {object} util.Response
// @Router /api/notes/{id} [put]
func (c *NoteController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var input service.UpdateNoteInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	note, err := c.NoteService.Update(claims.UserID, ctx.Param("id"), input)
	if err != nil {
		if errors.Is(err, util.ErrNoteNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, note)
}

// Delete godoc
// @Summary Delete a reflection
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/notes/{id} [delete]
func (c *NoteController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	if err := c.NoteService.Delete(ctx.Request.Context(), claims.UserID, ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrNoteNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
