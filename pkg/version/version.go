package version

// Current defines the application version.
// It defaults to "dev" and is overwritten at build time with -ldflags.
var Current = "dev"

const AppName = "platform-cli"

// UserAgent is appended to every AWS API request.
func UserAgent() string {
	return AppName + "/" + Current
}
