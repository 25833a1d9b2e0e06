package viz

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mechsim/internal/logging"
	"github.com/san-kum/mechsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width           = 80
	height          = 24
	fps             = 60
	historyCapacity = 600
	trailLength     = 150
)

type TickMsg time.Time

type Options struct {
	// Speed is simulated seconds per wall-clock second.
	Speed   float64
	GIFPath string
	Logger  *slog.Logger
}

type camera struct {
	spring        harmonica.Spring
	view          Viewport
	vx, vy, vHalf float64
	initialized   bool
}

// follow eases the view towards target.
func (c *camera) follow(target Viewport) {
	if !c.initialized {
		c.view, c.initialized = target, true
		return
	}
	c.view.Center.X, c.vx = c.spring.Update(c.view.Center.X, c.vx, target.Center.X)
	c.view.Center.Y, c.vy = c.spring.Update(c.view.Center.Y, c.vy, target.Center.Y)
	c.view.HalfExtent, c.vHalf = c.spring.Update(c.view.HalfExtent, c.vHalf, target.HalfExtent)
}

// Model is the Bubble Tea model of the live view.
type Model struct {
	ctx           context.Context
	scene         Scene
	runner        Runner
	sched         *sim.Scheduler
	opts          Options
	log           *slog.Logger
	canvas        *Canvas
	cam           *camera
	trails        [][]r2.Vec
	energyHistory []float64
	running       bool
	err           error
	message       string
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
}

// NewModel builds the scene and a scheduler to drive it.
func NewModel(ctx context.Context, scene Scene, opts Options) (Model, error) {
	if !(opts.Speed > 0) {
		opts.Speed = 1
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "simulation.gif"
	}
	m := Model{
		ctx:    ctx,
		scene:  scene,
		opts:   opts,
		log:    logging.OrDiscard(opts.Logger),
		canvas: NewCanvas(width, height),
		cam:    &camera{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)},
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	runner, err := m.scene.Build()
	if err != nil {
		return fmt.Errorf("build %s: %w", m.scene.Name, err)
	}
	sched := sim.New(m.log)
	if err := sched.Register(runner); err != nil {
		return err
	}

	m.runner, m.sched = runner, sched
	m.trails = make([][]r2.Vec, len(runner.Positions()))
	m.energyHistory = make([]float64, 0, historyCapacity)
	m.running, m.err = true, nil
	m.cam.initialized = false
	m.record()
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "+", "=":
			m.opts.Speed *= 2
		case "-", "_":
			m.opts.Speed /= 2
		case "g":
			m.toggleRecording()
		case "s":
			m.snapshot()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step(m.opts.Speed / fps)
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, captureFrame(m.canvas))
		}
		return m, tick()
	}
	return m, nil
}

// step advances the scene by dt of simulated time.
func (m *Model) step(dt float64) {
	if !m.sched.Pending() {
		m.running = false
		return
	}
	if _, err := m.sched.RunUntil(m.ctx, m.sched.Now()+dt); err != nil {
		m.err = err
		m.log.Error("live step failed", "scene", m.scene.Name, "err", err)
		return
	}
	m.record()
}

func (m *Model) record() {
	m.energyHistory = append(m.energyHistory, m.runner.Energy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	for i, p := range m.runner.Positions() {
		m.trails[i] = append(m.trails[i], p)
		if len(m.trails[i]) > trailLength {
			m.trails[i] = m.trails[i][1:]
		}
	}
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	m.recording = false
	if err := saveGIF(m.opts.GIFPath, m.frames, 100/fps); err != nil {
		m.message = "gif: " + err.Error()
	} else {
		m.message = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.opts.GIFPath)
	}
	m.frames = nil
}

func (m *Model) snapshot() {
	path := snapshotPath(m.opts.GIFPath)
	if err := saveSVG(path, m.canvas); err != nil {
		m.message = "svg: " + err.Error()
		return
	}
	m.message = "saved snapshot to " + path
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.cam.follow(m.runner.Frame())
	view := m.cam.view

	for _, trail := range m.trails {
		for _, p := range trail {
			m.canvas.Set(view.ToScreen(m.canvas, p))
		}
	}

	positions := m.runner.Positions()
	if anchor, ok := m.runner.Anchor(); ok && len(positions) > 0 {
		ax, ay := view.ToScreen(m.canvas, anchor)
		bx, by := view.ToScreen(m.canvas, positions[0])
		m.canvas.Disc(ax, ay, 0)
		m.canvas.DrawLine(ax, ay, bx, by)
	}
	for _, p := range positions {
		x, y := view.ToScreen(m.canvas, p)
		m.canvas.Disc(x, y, 1)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return statusError.Render("ERROR: " + m.err.Error())
	case m.recording:
		return statusRecording.Render("● REC")
	case !m.sched.Pending():
		return statusPaused.Render("DONE")
	case !m.running:
		return statusPaused.Render("PAUSED")
	default:
		return statusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.scene.Name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	now, runtime := m.sched.Now(), m.runner.Runtime()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4gs", now)) + "\n")
	if runtime > 0 {
		s.WriteString(labelStyle.Render("Progress") + ProgressBar(now/runtime, 20) + "\n")
	}
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%.4gx", m.opts.Speed)) + "\n")
	energy := 0.0
	if len(m.energyHistory) > 0 {
		energy = m.energyHistory[len(m.energyHistory)-1]
	}
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.6g", energy)) + "\n")
	s.WriteString(labelStyle.Render("Bodies") + valueStyle.Render(fmt.Sprintf("%d", len(m.trails))) + "\n")
	if m.message != "" {
		s.WriteString("\n" + valueStyle.Render(m.message) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Restart Q:Quit\n+/-:Speed G:Record S:Snap ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Restart simulation       ║
║  Q        - Quit                     ║
║  + / -    - Double/halve speed       ║
║  G        - Toggle GIF recording     ║
║  S        - Save SVG snapshot        ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run shows scene until the user quits.
func Run(ctx context.Context, scene Scene, opts Options) error {
	m, err := NewModel(ctx, scene, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Energy returns the recorded energy samples, oldest first.
func (m Model) Energy() []float64 { return m.energyHistory }

// Now is the simulated time shown.
func (m Model) Now() float64 { return m.sched.Now() }

func (m Model) Err() error { return m.err }
