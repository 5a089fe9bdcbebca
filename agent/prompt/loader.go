package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/user.txt
	userRaw string

	//go:embed template/final.txt
	finalRaw string

	//go:embed template/options_system.txt
	optionsSystemRaw string

	//go:embed template/options_user.txt
	optionsUserRaw string
)

// PromptSet holds loaded prompt content. User, Final and OptionsUser are
// FString templates.
type PromptSet struct {
	System        string
	User          string
	Final         string
	OptionsSystem string
	OptionsUser   string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System:        strings.TrimSpace(systemRaw),
		User:          strings.TrimSpace(userRaw),
		Final:         strings.TrimSpace(finalRaw),
		OptionsSystem: strings.TrimSpace(optionsSystemRaw),
		OptionsUser:   strings.TrimSpace(optionsUserRaw),
	}
}

func (p PromptSet) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"system", p.System},
		{"user", p.User},
		{"final", p.Final},
		{"options_system", p.OptionsSystem},
		{"options_user", p.OptionsUser},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s", contractx.ErrPromptMissing, r.name)
		}
	}
	return nil
}
