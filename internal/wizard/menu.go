package wizard

import (
	"fmt"
	"io"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/prompts"
	"github.com/charmbracelet/huh"
)

// Menu actions offered by the interactive session loop besides running a
// stage.
const (
	ActionFetch   = "fetch"
	ActionEnter   = "enter"
	ActionShow    = "show"
	ActionExport  = "export"
	ActionQuit    = "quit"
	stagePrefix   = "stage:"
	maxLabelWidth = 40
)

// Choice is the result of one menu selection.
type Choice struct {
	Action string
	Stage  prompts.Kind
}

// IsStage reports whether the choice runs a pipeline stage.
func (c Choice) IsStage() bool {
	return c.Stage != ""
}

// MenuOptions lists the menu entries for stages in table order, followed by
// the fixed actions.
func MenuOptions(stages []prompts.Stage) []huh.Option[string] {
	opts := []huh.Option[string]{
		huh.NewOption("Fetch requirement", ActionFetch),
		huh.NewOption("Enter requirement", ActionEnter),
	}
	for _, s := range stages {
		label := fmt.Sprintf("Run %s", s.Title)
		if len(label) > maxLabelWidth {
			label = label[:maxLabelWidth-3] + "..."
		}
		opts = append(opts, huh.NewOption(label, stagePrefix+string(s.Kind)))
	}
	return append(opts,
		huh.NewOption("Show artifacts", ActionShow),
		huh.NewOption("Export PDF report", ActionExport),
		huh.NewOption("Quit", ActionQuit),
	)
}

// ParseChoice turns a menu value back into a Choice.
func ParseChoice(value string) Choice {
	if k, ok := strings.CutPrefix(value, stagePrefix); ok {
		return Choice{Stage: prompts.Kind(k)}
	}
	return Choice{Action: value}
}

// SelectAction shows the main menu.
func SelectAction(in io.Reader, out io.Writer, stages []prompts.Stage) (Choice, error) {
	var value string
	err := run(in, out, huh.NewSelect[string]().
		Title("What next?").
		Options(MenuOptions(stages)...).
		Value(&value))
	if err != nil {
		return Choice{}, err
	}
	return ParseChoice(value), nil
}

// FrameworkOptions lists the automation frameworks with current first, so it
// is the default pick in both the terminal and accessible forms. An unknown
// current leaves the table order unchanged.
func FrameworkOptions(current string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(prompts.Frameworks))
	for _, f := range prompts.Frameworks {
		if strings.EqualFold(f, current) {
			opts = append([]huh.Option[string]{huh.NewOption(f, f)}, opts...)
			continue
		}
		opts = append(opts, huh.NewOption(f, f))
	}
	return opts
}

// SelectFramework asks which automation framework to generate for.
func SelectFramework(in io.Reader, out io.Writer, current string) (string, error) {
	opts := FrameworkOptions(current)
	value := opts[0].Value
	err := run(in, out, huh.NewSelect[string]().
		Title("Automation framework").
		Options(opts...).
		Value(&value))
	return value, err
}

// AskLine prompts for a single line of text.
func AskLine(in io.Reader, out io.Writer, title string) (string, error) {
	var value string
	err := run(in, out, huh.NewInput().
		Title(title).
		Value(&value).
		Validate(required(strings.ToLower(title))))
	return strings.TrimSpace(value), err
}

// AskText prompts for free-form multi-line text such as a requirement or a
// failure log.
func AskText(in io.Reader, out io.Writer, title string) (string, error) {
	var value string
	err := run(in, out, huh.NewText().
		Title(title).
		Value(&value).
		Validate(required(strings.ToLower(title))))
	return strings.TrimSpace(value), err
}

func run(in io.Reader, out io.Writer, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(in).
		WithOutput(out)
	if !isTerminal(in) {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}
