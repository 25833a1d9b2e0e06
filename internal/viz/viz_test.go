package viz

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/mechsim/internal/bodies"
	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/integrators"
	"github.com/san-kum/mechsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1 in first cell, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8 in second cell, got %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.String() != "⠀⠀\n" {
		t.Errorf("expected blank canvas, got %q", c.String())
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	for i := 0; i < 20; i++ {
		if !c.IsSet(i, i) {
			t.Fatalf("diagonal pixel %d not set", i)
		}
	}
}

func TestViewportToScreen(t *testing.T) {
	c := NewCanvas(20, 10) // 40x40 sub-pixels
	v := Viewport{Center: r2.Vec{X: 1, Y: 1}, HalfExtent: 2}

	x, y := v.ToScreen(c, r2.Vec{X: 1, Y: 1})
	if x != 20 || y != 20 {
		t.Errorf("center should map to (20,20), got (%d,%d)", x, y)
	}
	x, y = v.ToScreen(c, r2.Vec{X: 3, Y: 3})
	if x != 40 || y != 0 {
		t.Errorf("corner should map to (40,0), got (%d,%d)", x, y)
	}
}

func pendulumScene(runtime float64) Scene {
	cfg := bodies.DefaultPendulumConfig()
	cfg.InitAngle = 0.5
	cfg.Dt = 0.01
	cfg.Runtime = runtime
	return PendulumScene("pendulum", func() (*bodies.Pendulum, error) {
		return bodies.NewPendulum(cfg, nil)
	})
}

func TestPendulumSceneUsesBuilder(t *testing.T) {
	cfg := bodies.DefaultPendulumConfig()
	cfg.InitAngle = 0.5
	cfg.Runtime = 1
	scene := PendulumScene("pendulum", func() (*bodies.Pendulum, error) {
		return bodies.NewPendulum(cfg, integrators.NewEuler[physics.AngularState]())
	})

	r, err := scene.Build()
	if err != nil {
		t.Fatal(err)
	}
	ref, err := bodies.NewPendulum(cfg, integrators.NewEuler[physics.AngularState]())
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 10; i++ {
		now := float64(i) * cfg.Dt
		if err := r.Tick(now); err != nil {
			t.Fatal(err)
		}
		if err := ref.Tick(now); err != nil {
			t.Fatal(err)
		}
	}
	if r.Energy() != ref.Energy() {
		t.Errorf("scene should step with the built integrator: energy %g, want %g", r.Energy(), ref.Energy())
	}

	failing := PendulumScene("bad", func() (*bodies.Pendulum, error) {
		return nil, dynamo.ErrParameterBounds
	})
	if _, err := failing.Build(); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestModelAdvancesSimulatedTime(t *testing.T) {
	m, err := NewModel(context.Background(), pendulumScene(10), Options{Speed: 0.6})
	if err != nil {
		t.Fatal(err)
	}

	var model tea.Model = m
	for i := 0; i < 10; i++ {
		model, _ = model.Update(TickMsg{})
	}

	got := model.(Model)
	if math.Abs(got.Now()-0.1) > 1e-9 {
		t.Errorf("expected t=0.1 after 10 frames at 0.6x, got %g", got.Now())
	}
	if len(got.Energy()) != 11 {
		t.Errorf("expected 11 energy samples, got %d", len(got.Energy()))
	}
	if !strings.Contains(got.View(), "PENDULUM") {
		t.Error("view should carry the scene name")
	}
}

func TestModelStopsAtRuntime(t *testing.T) {
	m, err := NewModel(context.Background(), pendulumScene(0.05), Options{Speed: 60})
	if err != nil {
		t.Fatal(err)
	}
	var model tea.Model = m
	for i := 0; i < 3; i++ {
		model, _ = model.Update(TickMsg{})
	}
	got := model.(Model)
	if got.sched.Pending() || got.running {
		t.Error("run should be finished")
	}
	if !strings.Contains(got.View(), "DONE") {
		t.Error("view should report completion")
	}
}

func TestModelReportsSingularity(t *testing.T) {
	scene := SystemScene("clash", func() (*bodies.System, error) {
		var planets []*bodies.Planet
		for i := 0; i < 2; i++ {
			p, err := bodies.NewPlanet(bodies.PlanetConfig{Mass: 1})
			if err != nil {
				return nil, err
			}
			planets = append(planets, p)
		}
		return bodies.NewSystem(planets, bodies.SystemConfig{G: 1, Dt: 0.01, Runtime: 1}, nil)
	})

	m, err := NewModel(context.Background(), scene, Options{})
	if err != nil {
		t.Fatal(err)
	}
	model, _ := m.Update(TickMsg{})
	if !errors.Is(model.(Model).Err(), dynamo.ErrSingularity) {
		t.Errorf("expected singularity, got %v", model.(Model).Err())
	}
}

func TestModelQuit(t *testing.T) {
	m, err := NewModel(context.Background(), pendulumScene(1), Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestCaptureFrame(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(1, 2)
	img := captureFrame(c)
	if img.Bounds().Dx() != 2*charW || img.Bounds().Dy() != charH {
		t.Fatalf("unexpected frame size %v", img.Bounds())
	}
	if img.ColorIndexAt(charW/2, 2*charH/4) != 1 || img.ColorIndexAt(0, 0) != 0 {
		t.Error("lit dot not rasterized at the expected block")
	}
}

func TestWriteSVG(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	var buf bytes.Buffer
	if err := writeSVG(&buf, c, 4); err != nil {
		t.Fatalf("writeSVG: %v", err)
	}
	svg := buf.String()
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Errorf("malformed svg:\n%s", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `cx="2.0" cy="2.0"`) {
		t.Errorf("first dot not centred on its cell:\n%s", svg)
	}
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Errorf("unexpected size:\n%s", svg)
	}
}

func TestSnapshotPath(t *testing.T) {
	if got := snapshotPath("out/run.gif"); got != "out/run.svg" {
		t.Errorf("snapshotPath = %q", got)
	}
	if got := snapshotPath("frame"); got != "frame.svg" {
		t.Errorf("snapshotPath = %q", got)
	}
}
