package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Policy", func() {
	var set *Set

	BeforeEach(func() {
		set = &Set{}
	})

	Describe("FIFO", func() {
		var policy FIFOPolicy

		It("should evict the oldest arrival", func() {
			policy.Insert(set, 0)
			policy.Insert(set, 1)

			Expect(policy.Victim(set)).To(Equal(0))
		})

		It("should ignore hits after insertion", func() {
			policy.Insert(set, 0)
			policy.Insert(set, 1)
			policy.Touch(set, 0)

			Expect(policy.Victim(set)).To(Equal(0))
		})
	})

	Describe("LRU", func() {
		var policy LRUPolicy

		It("should evict the least recently used way", func() {
			policy.Insert(set, 0)
			policy.Insert(set, 1)

			Expect(policy.Victim(set)).To(Equal(0))
		})

		It("should protect a way that was hit", func() {
			policy.Insert(set, 0)
			policy.Insert(set, 1)
			policy.Touch(set, 0)

			Expect(policy.Victim(set)).To(Equal(1))
		})
	})

	Describe("MRU", func() {
		var policy MRUPolicy

		It("should evict the most recently inserted way", func() {
			policy.Insert(set, 0)
			policy.Insert(set, 1)

			Expect(policy.Victim(set)).To(Equal(1))
		})

		It("should evict the way that was hit last", func() {
			policy.Insert(set, 0)
			policy.Insert(set, 1)
			policy.Touch(set, 0)

			Expect(policy.Victim(set)).To(Equal(0))
		})
	})

	Describe("NewPolicy", func() {
		It("should create policies case-insensitively", func() {
			policy, err := NewPolicy("lru")

			Expect(err).ToNot(HaveOccurred())
			Expect(policy).To(Equal(LRUPolicy{}))
		})

		It("should reject unknown tokens", func() {
			_, err := NewPolicy("PLRU")

			Expect(err).To(HaveOccurred())
			Expect(IsValidPolicy("PLRU")).To(BeFalse())
		})
	})
})
