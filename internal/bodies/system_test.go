package bodies_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mechsim/internal/analysis"
	"github.com/san-kum/mechsim/internal/bodies"
	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/physics"
	"github.com/san-kum/mechsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

func planet(name string, mass float64, pos, vel r2.Vec) *bodies.Planet {
	p, err := bodies.NewPlanet(bodies.PlanetConfig{Name: name, Mass: mass, Position: pos, Velocity: vel})
	Expect(err).NotTo(HaveOccurred())
	return p
}

func binary() []*bodies.Planet {
	return []*bodies.Planet{
		planet("", 1, r2.Vec{X: 0.5}, r2.Vec{Y: 0.5}),
		planet("", 1, r2.Vec{X: -0.5}, r2.Vec{Y: -0.5}),
	}
}

func normalized(dt, runtime float64) bodies.SystemConfig {
	return bodies.SystemConfig{G: 1, Dt: dt, Runtime: runtime}
}

var _ = Describe("System", func() {
	ctx := context.Background()

	Describe("construction", func() {
		It("fails on an empty planet list", func() {
			s, err := bodies.NewSystem(nil, normalized(0.01, 1), nil)
			Expect(err).To(MatchError(dynamo.ErrNoBodies))
			Expect(s).To(BeNil())
		})

		It("labels unnamed planets in order", func() {
			planets := []*bodies.Planet{
				planet("", 1, r2.Vec{}, r2.Vec{}),
				planet("Sun", 1, r2.Vec{X: 1}, r2.Vec{}),
				planet("", 1, r2.Vec{X: 2}, r2.Vec{}),
			}
			s, err := bodies.NewSystem(planets, normalized(0.01, 1), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Names()).To(Equal([]string{"Planet1", "Sun", "Planet2"}))
		})

		It("does not reuse a label already taken", func() {
			planets := []*bodies.Planet{
				planet("", 1, r2.Vec{}, r2.Vec{}),
				planet("Planet1", 1, r2.Vec{X: 1}, r2.Vec{}),
			}
			s, err := bodies.NewSystem(planets, normalized(0.01, 1), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Names()).To(Equal([]string{"Planet2", "Planet1"}))
		})

		It("starts naming from 1 for every system", func() {
			first, err := bodies.NewSystem(binary(), normalized(0.01, 1), nil)
			Expect(err).NotTo(HaveOccurred())
			second, err := bodies.NewSystem(binary(), normalized(0.01, 1), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Names()).To(Equal(first.Names()))
		})

		It("rejects a planet with a different step size", func() {
			p, err := bodies.NewPlanet(bodies.PlanetConfig{Mass: 1, Dt: 0.5})
			Expect(err).NotTo(HaveOccurred())
			_, err = bodies.NewSystem([]*bodies.Planet{p}, normalized(0.01, 1), nil)
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("leaves planets untouched when a later planet is rejected", func() {
			a := planet("", 1, r2.Vec{}, r2.Vec{})
			b, err := bodies.NewPlanet(bodies.PlanetConfig{Mass: 1, Dt: 0.5})
			Expect(err).NotTo(HaveOccurred())

			_, err = bodies.NewSystem([]*bodies.Planet{a, b}, normalized(0.01, 1), nil)
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("planet 1"))
			Expect(a.Name()).To(BeEmpty())
			Expect(a.Dt()).To(BeZero())
			Expect(a.Runtime()).To(BeZero())

			s, err := bodies.NewSystem([]*bodies.Planet{a}, normalized(0.02, 1), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Names()).To(Equal([]string{"Planet1"}))
			Expect(a.Dt()).To(Equal(0.02))
		})

		It("rejects non-positive planet mass", func() {
			_, err := bodies.NewPlanet(bodies.PlanetConfig{Mass: 0})
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("defaults G to the physical constant", func() {
			s, err := bodies.NewSystem(binary(), bodies.SystemConfig{Dt: 1, Runtime: 1}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Model().G).To(Equal(physics.DefaultG))
		})
	})

	Describe("a mirrored binary", func() {
		var s *bodies.System

		BeforeEach(func() {
			var err error
			s, err = bodies.NewSystem(binary(), normalized(0.01, 5), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Run(ctx)).To(Succeed())
		})

		It("records one joint state per tick", func() {
			Expect(s.History()).To(HaveLen(500))
			Expect(s.Times()).To(HaveLen(500))
			Expect(s.Times()[499]).To(BeNumerically("~", 4.99, 1e-12))
		})

		It("stays point-symmetric about the origin at every tick", func() {
			for k, joint := range s.History() {
				mirror := r2.Add(joint[0].Pos, joint[1].Pos)
				Expect(r2.Norm(mirror)).To(BeNumerically("<", 1e-12), "tick %d", k)
			}
		})

		It("starts every history at the initial condition", func() {
			Expect(s.History()[0][0].Pos).To(Equal(r2.Vec{X: 0.5}))
			Expect(s.History()[0][1].Vel).To(Equal(r2.Vec{Y: -0.5}))

			p := s.Planets()[0]
			Expect(p.History().Position[0]).To(Equal(r2.Vec{X: 0.5}))
			Expect(p.History().Time[0]).To(Equal(0.0))
		})

		It("keeps planet histories aligned with the joint history", func() {
			for i, p := range s.Planets() {
				h := p.History()
				Expect(h.Len()).To(Equal(len(s.History())))
				for k := range s.History() {
					Expect(h.Position[k]).To(Equal(s.History()[k][i].Pos))
					Expect(h.Time[k]).To(Equal(s.Times()[k]))
				}
			}
		})

		It("hands the final joint state to its planets", func() {
			final := s.State()
			for i, p := range s.Planets() {
				Expect(p.State()).To(Equal(final[i]))
			}
		})

		It("conserves momentum and energy", func() {
			Expect(r2.Norm(s.Model().Momentum(s.State()))).To(BeNumerically("<", 1e-12))
			Expect(s.Energy()).To(BeNumerically("~", -0.75, 1e-4))
		})
	})

	Describe("coinciding bodies", func() {
		coincident := func() []*bodies.Planet {
			return []*bodies.Planet{
				planet("a", 1, r2.Vec{X: 1}, r2.Vec{}),
				planet("b", 1, r2.Vec{X: 1}, r2.Vec{}),
			}
		}

		It("aborts with a singularity error before recording", func() {
			s, err := bodies.NewSystem(coincident(), normalized(0.01, 1), nil)
			Expect(err).NotTo(HaveOccurred())

			err = s.Run(ctx)
			Expect(err).To(MatchError(dynamo.ErrSingularity))

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(0))
			Expect(simErr.Body).To(Equal("a"))
			Expect(s.History()).To(BeEmpty())
		})

		It("runs to completion with softening", func() {
			cfg := normalized(0.01, 1)
			cfg.Softening = 0.1
			s, err := bodies.NewSystem(coincident(), cfg, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Run(ctx)).To(Succeed())
			Expect(s.History()).To(HaveLen(100))
		})
	})

	It("runs alongside a pendulum on one scheduler", func() {
		s, err := bodies.NewSystem(binary(), normalized(0.01, 1), nil)
		Expect(err).NotTo(HaveOccurred())

		pcfg := bodies.DefaultPendulumConfig()
		pcfg.Dt, pcfg.Runtime, pcfg.InitAngle = 0.005, 1, 0.1
		p, err := bodies.NewPendulum(pcfg, nil)
		Expect(err).NotTo(HaveOccurred())

		sched := sim.New(nil)
		Expect(sched.Register(s)).To(Succeed())
		Expect(sched.Register(p)).To(Succeed())

		ticks, err := sched.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(Equal(300))
		Expect(s.History()).To(HaveLen(100))
		Expect(p.History().Len()).To(Equal(200))
	})
})

var _ = Describe("Pendulum", func() {
	It("swings with the small-angle period", func() {
		cfg := bodies.DefaultPendulumConfig()
		cfg.InitAngle = 0.01
		cfg.Runtime = 10
		p, err := bodies.NewPendulum(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Run(context.Background())).To(Succeed())

		period, err := analysis.ZeroCrossingPeriod(p.History().Angle, cfg.Dt)
		Expect(err).NotTo(HaveOccurred())

		want := p.Model().SmallAnglePeriod()
		Expect(want).To(BeNumerically("~", 2.006, 1e-3))
		Expect(period).To(BeNumerically("~", want, want*0.01))
	})
})
