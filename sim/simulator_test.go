package sim_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachetrace/cache"
	"github.com/sarchlab/cachetrace/render"
	"github.com/sarchlab/cachetrace/sim"
	"github.com/sarchlab/cachetrace/trace"
)

func twoLevelConfigs() []cache.Config {
	return []cache.Config{
		{
			Name:          "L1",
			TotalBytes:    64,
			BlockSize:     8,
			Associativity: 2,
			Policy:        "LRU",
			WritePolicy:   "WB",
		},
		{
			Name:          "L2",
			TotalBytes:    128,
			BlockSize:     8,
			Associativity: 4,
			Policy:        "FIFO",
			WritePolicy:   "WB",
		},
	}
}

var _ = Describe("Simulator", func() {
	It("should process the trace in order", func() {
		input := "R 0x20\nR 0x20\n"
		simulator := sim.NewSimulator(cache.NewHierarchy(twoLevelConfigs()))

		report, err := simulator.Run(trace.NewReader(strings.NewReader(input)))

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Accesses).To(Equal(uint64(2)))

		// Cold read misses everywhere; the repeat read hits L1 only.
		Expect(report.Events).To(HaveLen(4))
		Expect(report.Events[0].Level).To(Equal("L1"))
		Expect(report.Events[0].Outcome).To(Equal(cache.OutcomeMiss))
		Expect(report.Events[1].Level).To(Equal("L2"))
		Expect(report.Events[1].Outcome).To(Equal(cache.OutcomeMiss))
		Expect(report.Events[2].Level).To(Equal(cache.MemoryLevelName))
		Expect(report.Events[3].Level).To(Equal("L1"))
		Expect(report.Events[3].Outcome).To(Equal(cache.OutcomeHit))
	})

	It("should fold statistics into the report", func() {
		input := "R 0x0\nW 0x0\nR 0x8\n"
		simulator := sim.NewSimulator(cache.NewHierarchy(twoLevelConfigs()))

		report, err := simulator.Run(trace.NewReader(strings.NewReader(input)))

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Levels).To(HaveLen(2))

		l1 := report.Levels[0].Stats
		Expect(l1.ReadMisses).To(Equal(uint64(2)))
		Expect(l1.WriteHits).To(Equal(uint64(1)))
		Expect(l1.ReadHits + l1.ReadMisses).To(Equal(uint64(2)))
		Expect(l1.WriteHits + l1.WriteMisses).To(Equal(uint64(1)))

		Expect(report.MemoryAccesses).To(Equal(uint64(2)))
	})

	It("should hand every event to the handlers in order", func() {
		input := "R 0x20\nR 0x20\n"
		simulator := sim.NewSimulator(cache.NewHierarchy(twoLevelConfigs()))

		buf := &bytes.Buffer{}
		simulator.AddHandler(render.NewRenderer(buf))

		report, err := simulator.Run(trace.NewReader(strings.NewReader(input)))

		Expect(err).ToNot(HaveOccurred())
		Expect(strings.Count(buf.String(), "\n")).To(Equal(len(report.Events)))
	})

	It("should abort on a malformed record", func() {
		input := "R 0x20\nQ 0x20\n"
		simulator := sim.NewSimulator(cache.NewHierarchy(twoLevelConfigs()))

		_, err := simulator.Run(trace.NewReader(strings.NewReader(input)))

		Expect(err).To(HaveOccurred())

		var parseErr *trace.ParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
		Expect(parseErr.Line).To(Equal(2))
	})

	It("should be deterministic across replays", func() {
		input := "W 0x0\nR 0x40\nR 0x80\nW 0x0\nR 0xc0\nW 0x100\nR 0x0\n"

		run := func() string {
			simulator := sim.NewSimulator(
				cache.NewHierarchy(twoLevelConfigs()))
			buf := &bytes.Buffer{}
			renderer := render.NewRenderer(buf)
			simulator.AddHandler(renderer)

			report, err := simulator.Run(
				trace.NewReader(strings.NewReader(input)))
			Expect(err).ToNot(HaveOccurred())

			renderer.WriteSummary(report.Levels, report.MemoryAccesses)

			return buf.String()
		}

		Expect(run()).To(Equal(run()))
	})
})
