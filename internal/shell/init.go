package shell

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const bashInit = `# commitly shell integration
__commitly_prompt_hook() {
  eval "$(command commitly status --env 2>/dev/null)"
}

commitly_prompt_info() {
  command commitly status 2>/dev/null
}

if [[ -z "$PROMPT_COMMAND" ]]; then
  PROMPT_COMMAND="__commitly_prompt_hook"
elif [[ "$PROMPT_COMMAND" != *__commitly_prompt_hook* ]]; then
  PROMPT_COMMAND="__commitly_prompt_hook;${PROMPT_COMMAND}"
fi

eval "$(command commitly completion bash 2>/dev/null)"
`

const zshInit = `# commitly shell integration
__commitly_prompt_hook() {
  eval "$(command commitly status --env 2>/dev/null)"
}

commitly_prompt_info() {
  command commitly status 2>/dev/null
}

autoload -Uz add-zsh-hook
add-zsh-hook precmd __commitly_prompt_hook

eval "$(command commitly completion zsh 2>/dev/null)"
`

const fishInit = `# commitly shell integration
function __commitly_prompt_hook --on-event fish_prompt
  command commitly status --env 2>/dev/null | string replace -r '^export ' 'set -gx ' | string replace '=' ' ' | source
end

function commitly_prompt_info
  command commitly status 2>/dev/null
end

command commitly completion fish 2>/dev/null | source
`

var scripts = map[string]string{
	"bash": bashInit,
	"zsh":  zshInit,
	"fish": fishInit,
}

// Supported lists the shells WriteInit knows.
func Supported() []string {
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteInit writes the integration script for the named shell.
func WriteInit(w io.Writer, shell string) error {
	script, ok := scripts[shell]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: %s)", shell, strings.Join(Supported(), ", "))
	}
	_, err := io.WriteString(w, script)
	return err
}
