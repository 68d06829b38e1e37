package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hamzaelk/offerpipe/internal/model"
)

// Lines per offer in the list view (title + subtitle + blank separator).
const offerItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(20)

	hardSkillStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("48"))

	softSkillStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213"))

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// scalarFields is the display order of string-valued fields in the detail
// view. Both enriched profiles and cleaned offers are covered.
var scalarFields = []struct {
	key   string
	label string
}{
	{"titre", "Titre"},
	{"compagnie", "Compagnie"},
	{"companie", "Compagnie"},
	{"source", "Source"},
	{"via", "Source"},
	{"date_publication", "Publiée le"},
	{"publication_date", "Publiée le"},
	{"contrat", "Contrat"},
	{"secteur", "Secteur"},
	{"fonction", "Fonction"},
	{"niveau_etudes", "Études"},
	{"niveau_experience", "Expérience"},
	{"region", "Région"},
	{"salaire", "Salaire"},
}

type browseModel struct {
	title    string
	offers   []model.RawOffer
	cursor   int
	width    int
	height   int
	ready    bool
	view     viewState
	listVP   viewport.Model
	detailVP viewport.Model
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailVP.Width = m.width - 4
			m.detailVP.Height = m.height - 4
			m.detailVP.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		if len(m.offers) == 0 {
			return m, nil
		}
		m.view = viewDetail
		m.detailVP = viewport.New(m.width-4, m.height-4)
		m.detailVP.SetContent(m.renderDetail())
		return m, nil
	}

	var cmd tea.Cmd
	m.listVP, cmd = m.listVP.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if url := getStr(m.offers[m.cursor], "job_url"); url != "" {
			openURL(url)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailVP, cmd = m.detailVP.Update(msg)
	return m, cmd
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.offers)-1, 0))
	m.recalcContent()

	cursorTop := m.cursor * offerItemHeight
	cursorBottom := cursorTop + offerItemHeight - 1
	if cursorTop < m.listVP.YOffset {
		m.listVP.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listVP.YOffset+m.listVP.Height {
		m.listVP.SetYOffset(cursorBottom - m.listVP.Height + 1)
	}
}

func (m *browseModel) recalcLayout() {
	width := max(m.width-2, 20)
	height := max(m.height-4, 5)
	if !m.ready {
		m.listVP = viewport.New(width, height)
		m.ready = true
	} else {
		m.listVP.Width = width
		m.listVP.Height = height
	}
	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listVP.SetContent(renderOffers(m.offers, m.cursor))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		statusBar := statusBarStyle.Width(m.width).Render(
			" o open URL  esc/backspace back  ↑/↓ scroll  q quit")
		return headerStyle.Render(m.title) + "\n" +
			borderStyle.Width(m.width-2).Render(m.detailVP.View()) + "\n" + statusBar
	}

	header := headerStyle.Render(fmt.Sprintf(" %s (%d offres)", m.title, len(m.offers)))
	statusBar := statusBarStyle.Width(m.width).Render(
		" ↑/↓ cursor  Enter detail  q quit")
	return header + "\n" + borderStyle.Width(m.width-2).Render(m.listVP.View()) + "\n" + statusBar
}

func (m browseModel) renderDetail() string {
	offer := m.offers[m.cursor]
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	seen := map[string]bool{}
	for _, f := range scalarFields {
		if seen[f.label] {
			continue
		}
		if v := getStr(offer, f.key); v != "" {
			addField(f.label, v)
			seen[f.label] = true
		}
	}
	addField("URL", getStr(offer, "job_url"))
	if data, ok := offer["is_data_profile"].(bool); ok {
		addField("Profil data", fmt.Sprintf("%v", data))
	}

	if skills := offerSkills(offer); len(skills) > 0 {
		b.WriteByte('\n')
		b.WriteString(labelStyle.Render("Compétences"))
		b.WriteByte('\n')
		for _, s := range skills {
			style := hardSkillStyle
			if s.TypeSkill == "soft" {
				style = softSkillStyle
			}
			b.WriteString("  • " + style.Render(fmt.Sprintf("%s (%s)", s.Nom, s.TypeSkill)) + "\n")
		}
	}

	if desc := getStr(offer, "description"); desc != "" {
		b.WriteByte('\n')
		b.WriteString(labelStyle.Render("Description"))
		b.WriteByte('\n')
		b.WriteString(bodyStyle.Render(wordWrap(desc, max(m.width-8, 20))) + "\n")
	}

	return b.String()
}

func renderOffers(offers []model.RawOffer, cursor int) string {
	if len(offers) == 0 {
		return "  (aucune offre)"
	}

	var b strings.Builder
	for i, offer := range offers {
		titleSt, subtitleSt, prefix := titleStyle, subtitleStyle, "  "
		if i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		titre := getStr(offer, "titre", "title")
		if titre == "" {
			titre = "(sans titre)"
		}
		b.WriteString(prefix)
		b.WriteString(titleSt.Render(titre))
		b.WriteByte('\n')

		company := getStr(offer, "compagnie", "companie")
		if company == "" {
			company = "n/a"
		}
		date := getStr(offer, "date_publication", "publication_date")
		if date == "" {
			date = "n/a"
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s", company, date)))
		b.WriteByte('\n')

		if i < len(offers)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func getStr(offer model.RawOffer, keys ...string) string {
	for _, k := range keys {
		switch v := offer[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			var parts []string
			for _, e := range v {
				if s, ok := e.(string); ok && s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
	}
	return ""
}

func offerSkills(offer model.RawOffer) []model.Skill {
	list, ok := offer["skills"].([]any)
	if !ok {
		return nil
	}
	var skills []model.Skill
	for _, e := range list {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		nom, _ := entry["nom"].(string)
		typeSkill, _ := entry["type_skill"].(string)
		if nom != "" {
			skills = append(skills, model.Skill{Nom: nom, TypeSkill: typeSkill})
		}
	}
	return skills
}

func sortByDate(offers []model.RawOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		di := getStr(offers[i], "date_publication", "publication_date")
		dj := getStr(offers[j], "date_publication", "publication_date")
		return di > dj // ISO dates sort lexicographically, newest first
	})
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive offer browser over records loaded from a
// bucket.
func Run(title string, offers []model.RawOffer) error {
	sortByDate(offers)
	m := browseModel{title: title, offers: offers}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
