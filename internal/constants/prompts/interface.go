package prompts

type PromptDefinition struct {
	Content string
	Version float32
}

type SYS_PROMPT struct {
	Intent         string
	CurrentVersion float32
	Items          map[float32]PromptDefinition // version-content
}

func (sp *SYS_PROMPT) GetVersion(version float32) (PromptDefinition, bool) {
	i, ok := sp.Items[version]
	return i, ok
}

func (sp *SYS_PROMPT) GetCurrentPrompt() PromptDefinition {
	return sp.Items[sp.CurrentVersion]
}

// Pick resolves a configured version, falling back to current when the
// version is zero or unknown.
func (sp *SYS_PROMPT) Pick(version float32) PromptDefinition {
	if version == 0 {
		return sp.GetCurrentPrompt()
	}
	if pd, ok := sp.GetVersion(version); ok {
		return pd
	}
	return sp.GetCurrentPrompt()
}
