package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type mockSweeperRepository struct {
	swept         int64
	calls         atomic.Int64
	errorToReturn error
}

func (m *mockSweeperRepository) DeactivateExpiredSessions(cutoff time.Time) (int64, error) {
	m.calls.Add(1)
	if m.errorToReturn != nil {
		return 0, m.errorToReturn
	}
	return m.swept, nil
}

var _ = ginkgo.Describe("Sweeper", func() {
	var (
		mockRepo *mockSweeperRepository
		logger   *slog.Logger
	)

	ginkgo.BeforeEach(func() {
		mockRepo = &mockSweeperRepository{}
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	ginkgo.Describe("SweepOnce", func() {
		ginkgo.It("should call the repository once", func() {
			// Given
			mockRepo.swept = 3
			sweeper := NewSweeper(mockRepo, time.Minute, logger)

			// When
			sweeper.SweepOnce()

			// Then
			gomega.Expect(mockRepo.calls.Load()).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("should survive repository failures", func() {
			// Given
			mockRepo.errorToReturn = errors.New("database error")
			sweeper := NewSweeper(mockRepo, time.Minute, logger)

			// When
			sweeper.SweepOnce()
			sweeper.SweepOnce()

			// Then
			gomega.Expect(mockRepo.calls.Load()).To(gomega.Equal(int64(2)))
		})
	})

	ginkgo.Describe("Run", func() {
		ginkgo.It("should sweep on the interval until cancelled", func() {
			// Given
			sweeper := NewSweeper(mockRepo, 10*time.Millisecond, logger)
			ctx, cancel := context.WithCancel(context.Background())

			done := make(chan struct{})
			go func() {
				sweeper.Run(ctx)
				close(done)
			}()

			// When
			gomega.Eventually(func() int64 { return mockRepo.calls.Load() }).
				WithTimeout(time.Second).
				Should(gomega.BeNumerically(">=", 2))
			cancel()

			// Then
			gomega.Eventually(done).WithTimeout(time.Second).Should(gomega.BeClosed())
		})

		ginkgo.It("should fall back to a sane default interval", func() {
			// When
			sweeper := NewSweeper(mockRepo, 0, logger)

			// Then
			gomega.Expect(sweeper.interval).To(gomega.Equal(5 * time.Minute))
		})
	})
})
