package commands

// Language names with special handling
const (
	LanguageSystem            = "system"
	LanguageScript            = "script"
	LanguageFail              = "fail"
	LanguagePygrep            = "pygrep"
	LanguageDockerImage       = "docker_image"
	LanguageUnsupported       = "unsupported"
	LanguageUnsupportedScript = "unsupported_script"
)

// Normalize folds aliases: unsupported runs like system and
// unsupported_script like script. An empty language is system.
func Normalize(language string) string {
	switch language {
	case "", LanguageUnsupported:
		return LanguageSystem
	case LanguageUnsupportedScript:
		return LanguageScript
	default:
		return language
	}
}

// InProcess reports whether hookcfg evaluates the language itself instead
// of starting a process.
func InProcess(language string) bool {
	switch Normalize(language) {
	case LanguageFail, LanguagePygrep:
		return true
	default:
		return false
	}
}
