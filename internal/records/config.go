package records

// Backend names.
const (
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
)

// Config selects the record store backend.
type Config struct {
	Backend string `env:"RECORDS_BACKEND" envDefault:"file" validate:"oneof=file dynamodb"`
	Path    string `env:"DB_PATH" envDefault:"db.json"`
	Table   string `env:"RECORDS_TABLE" validate:"required_if=Backend dynamodb"`
}
