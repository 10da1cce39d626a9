package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/cachetrace/cache/internal/tagging"
)

var _ = Describe("Level", func() {
	var level *Level

	BeforeEach(func() {
		// 2 sets, 2 ways, 4-byte blocks.
		level = MakeBuilder().
			WithName("L1").
			WithTotalBytes(16).
			WithBlockSize(4).
			WithAssociativity(2).
			WithPolicy("LRU").
			Build()
	})

	It("should miss on a cold cache", func() {
		hit := level.Access(OpRead, 0x0)

		Expect(hit).To(BeFalse())
		Expect(level.Stats().ReadMisses).To(Equal(uint64(1)))
	})

	It("should hit after a fill", func() {
		level.Fill(0x0, false)

		hit := level.Access(OpRead, 0x2)

		Expect(hit).To(BeTrue())
		Expect(level.Stats().ReadHits).To(Equal(uint64(1)))
	})

	It("should mark the line dirty on a write hit", func() {
		level.Fill(0x0, false)

		level.Access(OpWrite, 0x0)
		_, dirty := level.Invalidate(0x0)

		Expect(dirty).To(BeTrue())
		Expect(level.Stats().WriteHits).To(Equal(uint64(1)))
	})

	It("should fill free ways without evicting", func() {
		res1 := level.Fill(0x0, false)
		res2 := level.Fill(0x8, false)

		Expect(res1.Evicted).To(BeFalse())
		Expect(res2.Evicted).To(BeFalse())
		Expect(level.Contains(0x0)).To(BeTrue())
		Expect(level.Contains(0x8)).To(BeTrue())
		Expect(level.Stats().Evictions).To(Equal(uint64(0)))
	})

	It("should evict only when the set is full", func() {
		level.Fill(0x0, false)
		level.Fill(0x8, false)

		res := level.Fill(0x10, false)

		Expect(res.Evicted).To(BeTrue())
		Expect(res.EvictedAddr).To(Equal(uint64(0x0)))
		Expect(level.Contains(0x0)).To(BeFalse())
		Expect(level.Contains(0x10)).To(BeTrue())
		Expect(level.Stats().Evictions).To(Equal(uint64(1)))
	})

	It("should raise the writeback flag for a dirty victim", func() {
		level.Fill(0x0, true)
		level.Fill(0x8, false)

		res := level.Fill(0x10, false)

		Expect(res.Writeback).To(BeTrue())
		Expect(level.Stats().Writebacks).To(Equal(uint64(1)))
	})

	It("should not write back a clean victim", func() {
		level.Fill(0x0, false)
		level.Fill(0x8, false)

		res := level.Fill(0x10, false)

		Expect(res.Writeback).To(BeFalse())
		Expect(level.Stats().Writebacks).To(Equal(uint64(0)))
	})

	It("should peek at the victim without mutating", func() {
		level.Fill(0x0, false)
		level.Fill(0x8, false)

		addr, full := level.Victim(0x10)

		Expect(full).To(BeTrue())
		Expect(addr).To(Equal(uint64(0x0)))
		Expect(level.Contains(0x0)).To(BeTrue())
	})

	It("should report no victim while the set has a free way", func() {
		level.Fill(0x0, false)

		_, full := level.Victim(0x10)

		Expect(full).To(BeFalse())
	})

	It("should invalidate a resident block", func() {
		level.Fill(0x0, true)

		present, dirty := level.Invalidate(0x0)

		Expect(present).To(BeTrue())
		Expect(dirty).To(BeTrue())
		Expect(level.Contains(0x0)).To(BeFalse())
		Expect(level.Stats().Evictions).To(Equal(uint64(1)))
		Expect(level.Stats().Writebacks).To(Equal(uint64(1)))
	})

	It("should ignore invalidation of an absent block", func() {
		present, dirty := level.Invalidate(0x0)

		Expect(present).To(BeFalse())
		Expect(dirty).To(BeFalse())
		Expect(level.Stats().Evictions).To(Equal(uint64(0)))
	})

	It("should set the dirty bit without touching recency on MarkDirty", func() {
		level.Fill(0x0, false)
		level.Fill(0x8, false)

		level.MarkDirty(0x0)

		// 0x0 stays the LRU victim: MarkDirty is not a use.
		addr, full := level.Victim(0x10)
		Expect(full).To(BeTrue())
		Expect(addr).To(Equal(uint64(0x0)))

		_, dirty := level.Invalidate(0x0)
		Expect(dirty).To(BeTrue())
	})

	It("should panic when a write-back targets a non-resident block", func() {
		Expect(func() { level.MarkDirty(0x0) }).To(Panic())
	})
})

var _ = Describe("Level with a mocked policy", func() {
	var (
		mockCtrl *gomock.Controller
		policy   *MockPolicy
		level    *Level
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		policy = NewMockPolicy(mockCtrl)
		level = &Level{
			name: "L1",
			geometry: Geometry{
				TotalBytes:    16,
				BlockSize:     4,
				Associativity: 2,
			},
			tags:   tagging.NewTagArray(2, 2),
			policy: policy,
		}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should touch on a hit", func() {
		policy.EXPECT().Insert(gomock.Any(), 0)
		level.Fill(0x0, false)

		policy.EXPECT().Touch(gomock.Any(), 0)
		hit := level.Access(OpRead, 0x0)

		Expect(hit).To(BeTrue())
	})

	It("should not consult the policy on a miss", func() {
		hit := level.Access(OpRead, 0x0)

		Expect(hit).To(BeFalse())
	})

	It("should ask the policy for a victim only when the set is full", func() {
		policy.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(2)
		level.Fill(0x0, false)
		level.Fill(0x8, false)

		policy.EXPECT().Victim(gomock.Any()).Return(1)
		policy.EXPECT().Insert(gomock.Any(), 1)
		res := level.Fill(0x10, false)

		Expect(res.Evicted).To(BeTrue())
		Expect(res.EvictedAddr).To(Equal(uint64(0x8)))
	})
})
