package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/sim"
)

type recorder struct {
	name    string
	period  float64
	runtime float64
	failAt  int
	log     *[]string
	times   []float64
}

func (r *recorder) Period() float64  { return r.period }
func (r *recorder) Runtime() float64 { return r.runtime }

func (r *recorder) Tick(now float64) error {
	if r.failAt > 0 && len(r.times) == r.failAt {
		return errors.New("boom")
	}
	r.times = append(r.times, now)
	if r.log != nil {
		*r.log = append(*r.log, r.name)
	}
	return nil
}

var _ = Describe("Scheduler", func() {
	var (
		ctx   context.Context
		sched *sim.Scheduler
	)

	BeforeEach(func() {
		ctx = context.Background()
		sched = sim.New(nil)
	})

	It("ticks a process once per dt until runtime", func() {
		p := &recorder{period: 0.1, runtime: 1.0}
		Expect(sched.Register(p)).To(Succeed())

		ticks, err := sched.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(Equal(10))
		Expect(p.times).To(HaveLen(dynamo.Config{Dt: 0.1, Runtime: 1.0}.Steps()))
		Expect(p.times[0]).To(Equal(0.0))
		Expect(p.times[9]).To(BeNumerically("~", 0.9, 1e-12))
		Expect(sched.Now()).To(BeNumerically("<", 1.0))
	})

	It("keeps time monotonic and strictly spaced by dt", func() {
		p := &recorder{period: 0.25, runtime: 3.0}
		Expect(sched.Register(p)).To(Succeed())

		_, err := sched.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		for i := 1; i < len(p.times); i++ {
			Expect(p.times[i] - p.times[i-1]).To(BeNumerically("~", 0.25, 1e-12))
		}
	})

	It("completes every process's tick k before any tick k+1", func() {
		var order []string
		a := &recorder{name: "a", period: 0.5, runtime: 2, log: &order}
		b := &recorder{name: "b", period: 0.5, runtime: 2, log: &order}
		Expect(sched.Register(a)).To(Succeed())
		Expect(sched.Register(b)).To(Succeed())

		_, err := sched.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal([]string{"a", "b", "a", "b", "a", "b", "a", "b"}))
	})

	It("interleaves processes with different periods on the shared clock", func() {
		fast := &recorder{period: 0.5, runtime: 2}
		slow := &recorder{period: 1, runtime: 2}
		Expect(sched.Register(fast)).To(Succeed())
		Expect(sched.Register(slow)).To(Succeed())

		ticks, err := sched.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(Equal(6))
		Expect(slow.times).To(Equal([]float64{0, 1}))
	})

	It("runs nothing for a zero runtime", func() {
		p := &recorder{period: 0.1, runtime: 0}
		Expect(sched.Register(p)).To(Succeed())

		ticks, err := sched.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(BeZero())
		Expect(sched.Pending()).To(BeFalse())
	})

	It("advances in chunks with RunUntil", func() {
		p := &recorder{period: 0.1, runtime: 1.0}
		Expect(sched.Register(p)).To(Succeed())

		ticks, err := sched.RunUntil(ctx, 0.35)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(Equal(4))
		Expect(sched.Now()).To(Equal(0.35))
		Expect(sched.Pending()).To(BeTrue())

		ticks, err = sched.RunUntil(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(Equal(6))
		Expect(sched.Pending()).To(BeFalse())
	})

	It("rejects a non-positive period", func() {
		err := sched.Register(&recorder{period: 0, runtime: 1})
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("aborts on the first tick error", func() {
		p := &recorder{period: 0.1, runtime: 1, failAt: 3}
		Expect(sched.Register(p)).To(Succeed())

		ticks, err := sched.Run(ctx)
		Expect(err).To(MatchError("boom"))
		Expect(ticks).To(Equal(3))
	})

	It("stops when the context is canceled", func() {
		p := &recorder{period: 0.1, runtime: 1}
		Expect(sched.Register(p)).To(Succeed())

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		ticks, err := sched.Run(canceled)
		Expect(err).To(MatchError(context.Canceled))
		Expect(ticks).To(BeZero())
	})
})
