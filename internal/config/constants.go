package config

// Default locations and limits
const (
	// DefaultDatabasePath is the default path for the SQLite database
	DefaultDatabasePath = "./hymnal.db"

	// DefaultMediaDir holds uploaded thumbnails and user images
	DefaultMediaDir = "./media"

	// DefaultMaxUploadBytes caps multipart uploads at 5 MiB
	DefaultMaxUploadBytes = 5 << 20

	// DefaultTOTPIssuer is shown by authenticator apps next to the account
	DefaultTOTPIssuer = "Hymnal"

	// DevSecretKey signs tokens when AUTH_SECRET_KEY is unset. Never use in production.
	DevSecretKey = "dev-insecure-secret-change-me"
)
