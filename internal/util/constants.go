package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// Upload validation constants.
const (
	MimeAudio       = "audio/"
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedAudioExtensions = []string{".mp3", ".m4a", ".wav", ".ogg", ".webm", ".aac"}
)
