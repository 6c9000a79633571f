package biz

import (
	"fmt"
	"strings"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/pkg/textutil"
)

// Plan response markers.
const (
	markerSection   = "### SECTION:"
	markerChecklist = "### CHECKLIST"
	markerEnd       = "### END"
	markerGroup     = "#### "
	markerItem      = "- [ ]"
	headerPrefix    = "###"

	// defaultChecklistGroup 未出现分组标题时任务所属的分组。
	defaultChecklistGroup = "General"
)

// planFormat is appended to plan prompts and is what ParsePlan accepts.
const planFormat = `Respond in exactly this format and nothing else:

### SECTION: <section title>
<section text, one or more lines>
### SECTION: <next section title>
<section text>
### CHECKLIST
#### <optional group title>
- [ ] <one concrete action item>
- [ ] <another action item>
### END

Rules: at least one SECTION, each with a title and text. Exactly one CHECKLIST after the sections with at least one "- [ ] " item, one per line. Group titles are optional. Finish with ### END. No text before the first SECTION or after ### END.`

// ParsedPlan is the structured content of a plan response.
type ParsedPlan struct {
	Sections []model.PlanSection
	Items    []ParsedItem
}

// ParsedItem is one checklist action item.
type ParsedItem struct {
	Group       string
	Description string
}

// ParseError describes why a plan response was rejected. Raw keeps the
// full response for diagnosis.
type ParseError struct {
	Line   int
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

type parseState int

const (
	stateStart parseState = iota
	stateSection
	stateChecklist
	stateDone
)

// ParsePlan parses a plan response strictly. The response must hold one or
// more "### SECTION: <title>" blocks with non-empty text, then exactly one
// "### CHECKLIST" block with at least one "- [ ] <item>" line, optionally
// grouped by "#### <group>" lines, then "### END". Anything else except
// blank lines is rejected with a *ParseError; nothing is guessed.
func ParsePlan(raw string) (*ParsedPlan, error) {
	p := &planParser{raw: raw, group: defaultChecklistGroup}
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if err := p.line(i+1, strings.TrimRight(line, " \t")); err != nil {
			return nil, err
		}
	}
	return p.finish(len(lines))
}

type planParser struct {
	raw   string
	state parseState

	plan    ParsedPlan
	body    []string
	title   string
	group   string
	grouped int // 当前分组下的任务数
	// groupLine 当前分组标题所在行，0 表示默认分组
	groupLine int
}

func (p *planParser) fail(line int, format string, args ...any) error {
	return &ParseError{Line: line, Reason: fmt.Sprintf(format, args...), Raw: p.raw}
}

func (p *planParser) line(n int, line string) error {
	trimmed := strings.TrimSpace(line)

	switch p.state {
	case stateStart:
		if trimmed == "" {
			return nil
		}
		title, ok := sectionTitle(trimmed)
		if !ok {
			return p.fail(n, "expected %q, got %q", markerSection+" <title>", clip(trimmed))
		}
		return p.openSection(n, title)

	case stateSection:
		if title, ok := sectionTitle(trimmed); ok {
			if err := p.closeSection(n); err != nil {
				return err
			}
			return p.openSection(n, title)
		}
		if trimmed == markerChecklist {
			if err := p.closeSection(n); err != nil {
				return err
			}
			p.state = stateChecklist
			return nil
		}
		if trimmed == markerEnd {
			return p.fail(n, "missing %s block", markerChecklist)
		}
		// "####" 及更深的标题属于正文
		if strings.HasPrefix(trimmed, headerPrefix) && !strings.HasPrefix(trimmed, headerPrefix+"#") {
			return p.fail(n, "unknown header %q", clip(trimmed))
		}
		p.body = append(p.body, line)
		return nil

	case stateChecklist:
		switch {
		case trimmed == "":
			return nil
		case trimmed == markerEnd:
			if err := p.closeGroup(n); err != nil {
				return err
			}
			if len(p.plan.Items) == 0 {
				return p.fail(n, "checklist has no items")
			}
			p.state = stateDone
			return nil
		case trimmed == markerChecklist:
			return p.fail(n, "duplicate %s block", markerChecklist)
		case strings.HasPrefix(trimmed, markerSection):
			return p.fail(n, "section after %s", markerChecklist)
		case trimmed == strings.TrimSpace(markerGroup) || strings.HasPrefix(trimmed, markerGroup):
			if err := p.closeGroup(n); err != nil {
				return err
			}
			group := strings.TrimSpace(strings.TrimPrefix(trimmed, markerGroup))
			if group == "" {
				return p.fail(n, "empty checklist group title")
			}
			p.group, p.grouped, p.groupLine = group, 0, n
			return nil
		case strings.HasPrefix(trimmed, markerItem):
			desc := strings.TrimSpace(strings.TrimPrefix(trimmed, markerItem))
			if desc == "" {
				return p.fail(n, "empty checklist item")
			}
			p.plan.Items = append(p.plan.Items, ParsedItem{Group: p.group, Description: desc})
			p.grouped++
			return nil
		default:
			return p.fail(n, "expected %q item, got %q", markerItem+" <item>", clip(trimmed))
		}

	default: // stateDone
		if trimmed != "" {
			return p.fail(n, "content after %s", markerEnd)
		}
		return nil
	}
}

func (p *planParser) openSection(n int, title string) error {
	if title == "" {
		return p.fail(n, "empty section title")
	}
	p.state = stateSection
	p.title = title
	p.body = p.body[:0]
	return nil
}

func (p *planParser) closeSection(n int) error {
	text := strings.TrimSpace(strings.Join(p.body, "\n"))
	if text == "" {
		return p.fail(n, "section %q has no text", p.title)
	}
	p.plan.Sections = append(p.plan.Sections, model.PlanSection{Title: p.title, Text: text})
	return nil
}

func (p *planParser) closeGroup(n int) error {
	if p.groupLine > 0 && p.grouped == 0 {
		return p.fail(n, "checklist group %q has no items", p.group)
	}
	return nil
}

func (p *planParser) finish(lines int) (*ParsedPlan, error) {
	switch p.state {
	case stateStart:
		return nil, &ParseError{Reason: "empty response", Raw: p.raw}
	case stateSection:
		return nil, p.fail(lines, "missing %s block", markerChecklist)
	case stateChecklist:
		return nil, p.fail(lines, "missing %s", markerEnd)
	}
	return &p.plan, nil
}

// sectionTitle returns the title of a "### SECTION: <title>" line; ok is
// false when the line is not a section header.
func sectionTitle(line string) (string, bool) {
	if !strings.HasPrefix(line, markerSection) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, markerSection)), true
}

func clip(s string) string {
	return textutil.Snippet(s, 60)
}
