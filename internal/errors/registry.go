package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	DocURL   string
}

const docBase = "https://docs.urltoapp.xyz/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {Category: CategoryConfig, Message: "Invalid setting", DocURL: docBase + "E120"},
	"E121": {Category: CategoryConfig, Message: "Settings file unreadable", DocURL: docBase + "E121"},

	// ============================================
	// User Errors (E200-E299)
	// ============================================

	"E200": {Category: CategoryUser, Message: "Application already exists", DocURL: docBase + "E200"},
	"E201": {Category: CategoryUser, Message: "Application not found", DocURL: docBase + "E201"},
	"E202": {Category: CategoryUser, Message: "Operation cancelled", DocURL: docBase + "E202"},
	"E203": {Category: CategoryUser, Message: "Invalid application name", DocURL: docBase + "E203"},
	"E204": {Category: CategoryUser, Message: "Invalid URL", DocURL: docBase + "E204"},
	"E205": {Category: CategoryUser, Message: "Unknown configuration option", DocURL: docBase + "E205"},
	"E206": {Category: CategoryUser, Message: "Invalid icon", DocURL: docBase + "E206"},
	"E207": {Category: CategoryUser, Message: "Invalid build target", DocURL: docBase + "E207"},
	"E208": {Category: CategoryUser, Message: "Confirmation requires a terminal", DocURL: docBase + "E208"},

	// ============================================
	// Transient Errors (E300-E399)
	// ============================================

	"E300": {Category: CategoryTransient, Message: "Network request failed", DocURL: docBase + "E300"},
	"E301": {Category: CategoryTransient, Message: "Version lookup failed", DocURL: docBase + "E301"},

	// ============================================
	// Subprocess Errors (E400-E499)
	// ============================================

	"E400": {Category: CategorySubprocess, Message: "Dependency install failed", DocURL: docBase + "E400"},
	"E401": {Category: CategorySubprocess, Message: "Packaging failed", DocURL: docBase + "E401"},
	"E402": {Category: CategorySubprocess, Message: "Installer build failed", DocURL: docBase + "E402"},
	"E403": {Category: CategorySubprocess, Message: "Command rejected", DocURL: docBase + "E403"},
	"E404": {Category: CategorySubprocess, Message: "Desktop integration command failed", DocURL: docBase + "E404"},

	// ============================================
	// Filesystem Errors (E500-E599)
	// ============================================

	"E500": {Category: CategoryFilesystem, Message: "Filesystem operation failed", DocURL: docBase + "E500"},
	"E501": {Category: CategoryFilesystem, Message: "Registry unreadable", DocURL: docBase + "E501"},
	"E502": {Category: CategoryFilesystem, Message: "Registry write failed", DocURL: docBase + "E502"},
	"E503": {Category: CategoryFilesystem, Message: "Registry lock failed", DocURL: docBase + "E503"},

	// ============================================
	// Privilege Errors (E600-E699)
	// ============================================

	"E600": {Category: CategoryPrivilege, Message: "Refusing to run with elevated privileges", DocURL: docBase + "E600"},
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// exitCodes maps categories to process exit codes.
var exitCodes = map[Category]int{
	CategoryInternal:   1,
	CategoryUser:       2,
	CategoryTransient:  3,
	CategorySubprocess: 4,
	CategoryFilesystem: 5,
	CategoryPrivilege:  6,
	CategoryConfig:     7,
}

// ExitCode returns the process exit code for err. A nil error exits 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[CategoryOf(err)]; ok {
		return code
	}
	return 1
}
