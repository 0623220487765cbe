// Package viz renders the running model in the terminal: a latitude
// temperature profile, a global mean history strip, and keyboard
// controls for the solar and greenhouse forcings.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ebmlab/internal/driver"
)

const (
	chartWidth      = 70
	chartHeight     = 14
	historyCapacity = 240

	solarMin  = 0.7
	solarMax  = 1.3
	solarStep = 0.01

	greenhouseMin  = -1.0
	greenhouseMax  = 1.0
	greenhouseStep = 0.05
)

type TickMsg time.Time

// Model is the bubbletea state for the live view. It owns the frame
// loop and reads one snapshot per rendered frame.
type Model struct {
	loop     *driver.Loop
	snap     driver.Snapshot
	history  []float64
	fps      int
	paused   bool
	showHelp bool
}

func NewModel(loop *driver.Loop, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		loop:    loop,
		snap:    loop.Snapshot(),
		history: make([]float64, 0, historyCapacity),
		fps:     fps,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.loop.Reset()
			m.history = m.history[:0]
		case "right", "l":
			m.loop.SetSolarScale(clamp(m.loop.SolarScale()+solarStep, solarMin, solarMax))
		case "left", "h":
			m.loop.SetSolarScale(clamp(m.loop.SolarScale()-solarStep, solarMin, solarMax))
		case "up", "k":
			m.loop.SetGreenhouse(clamp(m.loop.Greenhouse()+greenhouseStep, greenhouseMin, greenhouseMax))
		case "down", "j":
			m.loop.SetGreenhouse(clamp(m.loop.Greenhouse()-greenhouseStep, greenhouseMin, greenhouseMax))
		case "?":
			m.showHelp = !m.showHelp
		}
		return m, nil
	case TickMsg:
		if !m.paused {
			m.loop.Tick(time.Time(msg))
		}
		m.snap = m.loop.Snapshot()
		m.history = append(m.history, m.snap.MeanTemp)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	snap := m.snap

	// Temperature profile against the ice-formation reference line.
	threshold := make([]float64, len(snap.Temp))
	for i := range threshold {
		threshold[i] = snap.IceThreshold
	}
	profile := asciigraph.PlotMany(
		[][]float64{snap.Temp, threshold},
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption("temperature by latitude (south → north)"),
	)

	var charts strings.Builder
	charts.WriteString(profile)
	if len(m.history) > 1 {
		charts.WriteString("\n\n")
		charts.WriteString(asciigraph.Plot(m.history,
			asciigraph.Height(4),
			asciigraph.Width(chartWidth),
			asciigraph.Caption("global mean temperature"),
		))
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("ENERGY BALANCE MODEL") + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.1f", snap.Time)) + "\n")
	s.WriteString(labelStyle.Render("Mean temp") + valueStyle.Render(fmt.Sprintf("%.2f °C", snap.MeanTemp)) + "\n")
	s.WriteString(labelStyle.Render("Net flux") + valueStyle.Render(fmt.Sprintf("%.3f W/m²", snap.NetFlux)) + "\n")
	s.WriteString(labelStyle.Render("Ice edge") + valueStyle.Render(fmt.Sprintf("%.0f°", iceEdge(snap))) + "\n")
	s.WriteString("\nFORCING\n")
	s.WriteString(slider("solar", snap.SolarScale, solarMin, solarMax) + "\n")
	s.WriteString(slider("greenhouse", snap.Greenhouse, greenhouseMin, greenhouseMax) + "\n")
	s.WriteString(helpStyle.Render("\n──────────────────\nSP:Pause R:Reset Q:Quit\n←→:Solar ↑↓:Greenhouse ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		chartStyle.Render(charts.String()),
		statsStyle.Render(s.String()),
	)
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m Model) status() string {
	switch {
	case m.paused:
		return "PAUSED"
	case m.snap.Settled:
		return settleStyle.Render("EQUILIBRIUM")
	case m.snap.MeanTemp < m.snap.IceThreshold:
		return frozenStyle.Render("SNOWBALL")
	default:
		return "RUNNING"
	}
}

// iceEdge finds the lowest absolute latitude of any frozen band; 90
// means ice free.
func iceEdge(s driver.Snapshot) float64 {
	edge := 90.0
	for i, t := range s.Temp {
		if t < s.IceThreshold {
			a := s.Lat[i]
			if a < 0 {
				a = -a
			}
			if a < edge {
				edge = a
			}
		}
	}
	return edge
}

func slider(name string, val, min, max float64) string {
	const width = 14
	ratio := (val - min) / (max - min)
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
	return fmt.Sprintf("%-11s %s %.2f", name, bar, val)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  ←/→ H/L  - Dim/brighten the sun     ║
║  ↑/↓ K/J  - Greenhouse up/down       ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
`
