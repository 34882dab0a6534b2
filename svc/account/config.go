package account

// Config names the product, the public base URL used to build the links
// embedded in outbound emails, and the optional seed admin created at
// startup when no account exists for that address.
type Config struct {
	AppName       string `env:"APP_NAME" envDefault:"QuitPlan"`
	AppBaseURL    string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
	Environment   string `env:"APP_ENV" envDefault:"development"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
