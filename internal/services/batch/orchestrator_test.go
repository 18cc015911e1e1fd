package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valuescope/internal/models"
	"github.com/bobmcallan/valuescope/internal/services/valuation"
	tcommon "github.com/bobmcallan/valuescope/test/common"
)

func newTestOrchestrator(src *tcommon.MockFinancialSource, pacer *tcommon.RecordingPacer, opts Options) *Orchestrator {
	return NewOrchestrator(src, valuation.NewCalculator(valuation.DefaultParams()), pacer, opts, nil)
}

func tickers(n int) []models.Ticker {
	out := make([]models.Ticker, n)
	for i := range out {
		out[i] = models.Ticker(fmt.Sprintf("T%03d", i))
	}
	return out
}

func TestRun_FailureIsolationPreservesOrder(t *testing.T) {
	src := tcommon.NewMockFinancialSource(
		tcommon.SampleFinancials("GOOD"),
		tcommon.SampleFinancials("GOOD2"),
	)
	src.Errors["BAD"] = errors.New("unknown ticker")

	orch := newTestOrchestrator(src, &tcommon.RecordingPacer{}, Options{})
	report, err := orch.Run(context.Background(), []models.Ticker{"GOOD", "BAD", "GOOD2"}, nil)
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Equal(t, models.Ticker("GOOD"), report.Results[0].Symbol())
	assert.Equal(t, models.Ticker("BAD"), report.Results[1].Symbol())
	assert.Equal(t, models.Ticker("GOOD2"), report.Results[2].Symbol())

	assert.IsType(t, &models.TickerSuccess{}, report.Results[0])
	assert.IsType(t, &models.TickerFailure{}, report.Results[1])
	assert.IsType(t, &models.TickerSuccess{}, report.Results[2])

	assert.Len(t, report.Successes(), 2)
	failures := report.Failures()
	require.Len(t, failures, 1)
	var srcErr *models.SourceError
	assert.True(t, errors.As(failures[0].Err, &srcErr))

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Requested)
	assert.False(t, report.CompletedAt.Before(report.StartedAt))
}

func TestRun_SuccessCarriesMetrics(t *testing.T) {
	src := tcommon.NewMockFinancialSource(tcommon.SampleFinancials("AAPL"))
	orch := newTestOrchestrator(src, &tcommon.RecordingPacer{}, Options{})

	report, err := orch.Run(context.Background(), []models.Ticker{"AAPL"}, nil)
	require.NoError(t, err)

	s := report.Successes()[0]
	assert.Equal(t, "AAPL Corp", s.Profile.Name)
	require.NotNil(t, s.Price)
	assert.Equal(t, 150.0, *s.Price)
	require.NotNil(t, s.WACC)
	assert.True(t, s.WACC.CreatesValue())
	require.NotNil(t, s.Ratios.PFCF)
	assert.InDelta(t, 25.0, *s.Ratios.PFCF, 1e-9)
	assert.Empty(t, s.WACCError)
}

func TestRun_WACCUnavailableStaysSuccess(t *testing.T) {
	src := tcommon.NewMockFinancialSource(tcommon.NoCapitalFinancials("SHELL"))
	orch := newTestOrchestrator(src, &tcommon.RecordingPacer{}, Options{})

	report, err := orch.Run(context.Background(), []models.Ticker{"SHELL"}, nil)
	require.NoError(t, err)
	require.Len(t, report.Successes(), 1)

	s := report.Successes()[0]
	assert.Nil(t, s.WACC)
	assert.NotEmpty(t, s.WACCError)
	require.NotNil(t, s.Ratios.PE)
	assert.Equal(t, models.NotAvailable, s.Profile.Sector)
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	src := tcommon.NewMockFinancialSource(tcommon.SampleFinancials("OK"))
	src.Panics["BOOM"] = true

	orch := newTestOrchestrator(src, &tcommon.RecordingPacer{}, Options{})
	report, err := orch.Run(context.Background(), []models.Ticker{"BOOM", "OK"}, nil)
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	f, ok := report.Results[0].(*models.TickerFailure)
	require.True(t, ok)
	assert.Contains(t, f.Error(), "panic")
	assert.IsType(t, &models.TickerSuccess{}, report.Results[1])
}

func TestRun_TruncatesToMaxTickers(t *testing.T) {
	src := tcommon.NewMockFinancialSource()
	for _, tk := range tickers(120) {
		src.Data[tk] = tcommon.SampleFinancials(tk)
	}

	orch := newTestOrchestrator(src, &tcommon.RecordingPacer{}, Options{MaxTickers: 50})
	report, err := orch.Run(context.Background(), tickers(120), nil)
	require.NoError(t, err)

	assert.Len(t, report.Results, 50)
	assert.Equal(t, 120, report.Requested)
	assert.Equal(t, 50, src.CallCount())
	assert.Equal(t, models.Ticker("T049"), report.Results[49].Symbol())
}

func TestRun_ProgressIsMonotonic(t *testing.T) {
	src := tcommon.NewMockFinancialSource()
	input := tickers(23)
	for _, tk := range input {
		src.Data[tk] = tcommon.SampleFinancials(tk)
	}

	var events []models.Progress
	orch := newTestOrchestrator(src, &tcommon.RecordingPacer{}, Options{BatchSize: 10})
	_, err := orch.Run(context.Background(), input, func(p models.Progress) {
		events = append(events, p)
	})
	require.NoError(t, err)

	require.Len(t, events, 23)
	prev := 0.0
	for i, ev := range events {
		assert.Greater(t, ev.Fraction, prev)
		prev = ev.Fraction
		assert.Equal(t, i+1, ev.Done)
		assert.Equal(t, 23, ev.Total)
		assert.Equal(t, input[i], ev.Ticker)
	}
	assert.Equal(t, 1, events[0].Batch)
	assert.Equal(t, 1, events[9].Batch)
	assert.Equal(t, 2, events[10].Batch)
	assert.Equal(t, 3, events[22].Batch)
	assert.Equal(t, 1.0, events[22].Fraction)
}

func TestRun_PacingCalls(t *testing.T) {
	tests := []struct {
		name       string
		nestedPace bool
		want       int
	}{
		// two waits between three tickers, plus one nested wait per success
		{"nested", true, 4},
		{"flat", false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tcommon.NewMockFinancialSource(
				tcommon.SampleFinancials("A"),
				tcommon.SampleFinancials("C"),
			)
			pacer := &tcommon.RecordingPacer{}
			orch := newTestOrchestrator(src, pacer, Options{NestedPace: tt.nestedPace})

			_, err := orch.Run(context.Background(), []models.Ticker{"A", "B", "C"}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pacer.Calls())
		})
	}
}

func TestRun_CancelledReturnsPartialReport(t *testing.T) {
	src := tcommon.NewMockFinancialSource()
	input := tickers(5)
	for _, tk := range input {
		src.Data[tk] = tcommon.SampleFinancials(tk)
	}

	ctx, cancel := context.WithCancel(context.Background())
	orch := newTestOrchestrator(src, &tcommon.RecordingPacer{}, Options{})

	report, err := orch.Run(ctx, input, func(p models.Progress) {
		if p.Done == 2 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Len(t, report.Results, 2)
	assert.Equal(t, 2, src.CallCount())
}

func TestRun_Empty(t *testing.T) {
	orch := newTestOrchestrator(tcommon.NewMockFinancialSource(), &tcommon.RecordingPacer{}, Options{})
	report, err := orch.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
}

type slowSource struct{}

func (slowSource) Fetch(ctx context.Context, ticker models.Ticker) (*models.RawFinancials, error) {
	<-ctx.Done()
	return nil, models.NewSourceError(ticker, ctx.Err())
}

func TestRun_FetchTimeout(t *testing.T) {
	orch := NewOrchestrator(slowSource{}, nil, NoDelay{}, Options{FetchTimeout: 20 * time.Millisecond}, nil)

	report, err := orch.Run(context.Background(), []models.Ticker{"SLOW"}, nil)
	require.NoError(t, err)
	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0].Err, context.DeadlineExceeded)
}

func TestWithMaxTickers(t *testing.T) {
	src := tcommon.NewMockFinancialSource()
	for _, tk := range tickers(10) {
		src.Data[tk] = tcommon.SampleFinancials(tk)
	}
	orch := newTestOrchestrator(src, &tcommon.RecordingPacer{}, Options{MaxTickers: 50})

	report, err := orch.WithMaxTickers(3).Run(context.Background(), tickers(10), nil)
	require.NoError(t, err)
	assert.Len(t, report.Results, 3)

	// out of range keeps the configured limit
	report, err = orch.WithMaxTickers(500).Run(context.Background(), tickers(10), nil)
	require.NoError(t, err)
	assert.Len(t, report.Results, 10)
}
