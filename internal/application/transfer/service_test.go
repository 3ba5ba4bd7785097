package transfer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appTransfer "github.com/orkesta-pay/settlement-go/internal/application/transfer"
	domainTransfer "github.com/orkesta-pay/settlement-go/internal/domain/transfer"
	"github.com/orkesta-pay/settlement-go/internal/infra/metrics"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/persistence/inmemory"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/processor"
)

type noopLogger struct{}

func (n *noopLogger) Info(string, map[string]any)  {}
func (n *noopLogger) Error(string, map[string]any) {}

func newService() (*appTransfer.Service, *inmemory.TransferRepository, *processor.FakeClient) {
	repo := inmemory.NewTransferRepository()
	client := processor.NewFakeClient()
	svc := &appTransfer.Service{
		Transfers: repo,
		Processor: client,
		Logger:    &noopLogger{},
		Metrics:   &metrics.Counters{},
	}
	return svc, repo, client
}

func participants(weights ...int64) []domainTransfer.Participant {
	out := make([]domainTransfer.Participant, 0, len(weights))
	for i, w := range weights {
		out = append(out, domainTransfer.Participant{
			AccountID: "acct_" + string(rune('a'+i)),
			Weight:    w,
		})
	}
	return out
}

func TestSplit_WhenThreeParticipants_ShouldReserveFeeAndDistributeByWeight(t *testing.T) {
	svc, _, _ := newService()

	outcome, err := svc.Split(
		context.Background(), "tenant-1", "ch_1",
		200_000, "MXN", participants(60, 25, 15), 250,
	)

	require.NoError(t, err)
	require.Equal(t, int64(5_000), outcome.PlatformFee)
	require.Len(t, outcome.Instructions, 3)
	require.Equal(t, int64(117_000), outcome.Instructions[0].Amount)
	require.Equal(t, int64(48_750), outcome.Instructions[1].Amount)
	require.Equal(t, int64(29_250), outcome.Instructions[2].Amount)
}

func TestSplit_ShouldConserveTotalExactly(t *testing.T) {
	svc, _, _ := newService()

	// Weights chosen so proportional shares do not divide evenly.
	outcome, err := svc.Split(
		context.Background(), "tenant-1", "ch_1",
		100_003, "MXN", participants(7, 11, 13), 333,
	)
	require.NoError(t, err)

	var distributed int64
	for _, i := range outcome.Instructions {
		distributed += i.Amount
	}
	require.Equal(t, int64(100_003), distributed+outcome.PlatformFee)
}

func TestSplit_WhenParticipantHasFloor_ShouldClampUp(t *testing.T) {
	svc, _, _ := newService()

	parts := participants(10, 90)
	parts[0].MinAmount = 50_000

	outcome, err := svc.Split(context.Background(), "tenant-1", "ch_1", 100_000, "MXN", parts, 0)

	require.NoError(t, err)
	require.Equal(t, int64(50_000), outcome.Instructions[0].Amount)
	require.Equal(t, int64(50_000), outcome.Instructions[1].Amount)
}

func TestSplit_WhenParticipantHasCeiling_ShouldClampDown(t *testing.T) {
	svc, _, _ := newService()

	parts := participants(90, 10)
	parts[0].MaxAmount = 10_000

	outcome, err := svc.Split(context.Background(), "tenant-1", "ch_1", 100_000, "MXN", parts, 0)

	require.NoError(t, err)
	require.Equal(t, int64(10_000), outcome.Instructions[0].Amount)
	require.Equal(t, int64(90_000), outcome.Instructions[1].Amount)
}

func TestSplit_WhenShareClampsToZero_ShouldDropParticipant(t *testing.T) {
	svc, _, _ := newService()

	parts := participants(99, 1)
	parts[0].MinAmount = 100_000

	outcome, err := svc.Split(context.Background(), "tenant-1", "ch_1", 100_000, "MXN", parts, 0)

	require.NoError(t, err)
	require.Len(t, outcome.Instructions, 1)
	require.Equal(t, int64(100_000), outcome.Instructions[0].Amount)
}

func TestSplit_ShouldPersistInstructionsWithSharedGroup(t *testing.T) {
	svc, repo, client := newService()

	outcome, err := svc.Split(
		context.Background(), "tenant-1", "ch_1",
		200_000, "MXN", participants(60, 25, 15), 250,
	)
	require.NoError(t, err)
	require.Len(t, client.Transfers, 3)

	for _, i := range outcome.Instructions {
		saved, err := repo.FindByID(i.InstructionID)
		require.NoError(t, err)
		require.Equal(t, outcome.GroupID, saved.GroupID)
		require.Equal(t, "ch_1", saved.SourceChargeID)
		require.Equal(t, domainTransfer.StatusPending, saved.Status)
	}
}

func TestSplit_WhenInputInvalid_ShouldReject(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.Split(ctx, "t", "c", 0, "MXN", participants(1), 0)
	require.Error(t, err)

	_, err = svc.Split(ctx, "t", "c", 1_000, "MXN", nil, 0)
	require.Error(t, err)

	_, err = svc.Split(ctx, "t", "c", 1_000, "MXN", participants(1), 10_001)
	require.Error(t, err)

	bad := participants(1)
	bad[0].Weight = 0
	_, err = svc.Split(ctx, "t", "c", 1_000, "MXN", bad, 0)
	require.Error(t, err)
}

func splitOne(t *testing.T, svc *appTransfer.Service, amount int64) *domainTransfer.Instruction {
	t.Helper()

	outcome, err := svc.Split(
		context.Background(), "tenant-1", "ch_1",
		amount, "MXN", participants(1), 0,
	)
	require.NoError(t, err)
	require.Len(t, outcome.Instructions, 1)
	return outcome.Instructions[0]
}

func TestReverse_WhenPartial_ShouldMarkPartiallyReversed(t *testing.T) {
	svc, repo, _ := newService()
	instruction := splitOne(t, svc, 10_000)

	_, err := svc.Reverse(context.Background(), instruction.InstructionID, 4_000, "partial refund")
	require.NoError(t, err)

	saved, err := repo.FindByID(instruction.InstructionID)
	require.NoError(t, err)
	require.Equal(t, domainTransfer.StatusPartiallyReversed, saved.Status)
	require.Equal(t, int64(4_000), saved.ReversedAmount)
	require.Equal(t, int64(10_000), saved.Amount)
}

func TestReverse_WhenAmountOmitted_ShouldReverseRemainder(t *testing.T) {
	svc, repo, _ := newService()
	instruction := splitOne(t, svc, 10_000)

	_, err := svc.Reverse(context.Background(), instruction.InstructionID, 4_000, "first")
	require.NoError(t, err)

	reversal, err := svc.Reverse(context.Background(), instruction.InstructionID, 0, "rest")
	require.NoError(t, err)
	require.Equal(t, int64(6_000), reversal.Amount)

	saved, err := repo.FindByID(instruction.InstructionID)
	require.NoError(t, err)
	require.Equal(t, domainTransfer.StatusReversed, saved.Status)
	require.Equal(t, int64(0), saved.Remaining())
}

func TestReverse_WhenOverRemaining_ShouldReject(t *testing.T) {
	svc, _, _ := newService()
	instruction := splitOne(t, svc, 10_000)

	_, err := svc.Reverse(context.Background(), instruction.InstructionID, 10_001, "too much")
	require.ErrorIs(t, err, appTransfer.ErrOverReversal)

	_, err = svc.Reverse(context.Background(), instruction.InstructionID, 10_000, "all")
	require.NoError(t, err)

	_, err = svc.Reverse(context.Background(), instruction.InstructionID, 1, "again")
	require.ErrorIs(t, err, appTransfer.ErrOverReversal)
}

func TestReverse_WhenUnknownInstruction_ShouldReturnNotFound(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Reverse(context.Background(), "tr_missing", 100, "whatever")
	require.ErrorIs(t, err, domainTransfer.ErrNotFound)
}

func TestListByTenant_ShouldFilterByStatus(t *testing.T) {
	svc, _, _ := newService()
	instruction := splitOne(t, svc, 10_000)

	_, err := svc.Reverse(context.Background(), instruction.InstructionID, 0, "full")
	require.NoError(t, err)

	reversed, err := svc.ListByTenant(context.Background(), "tenant-1", domainTransfer.StatusReversed, 10)
	require.NoError(t, err)
	require.Len(t, reversed, 1)

	pending, err := svc.ListByTenant(context.Background(), "tenant-1", domainTransfer.StatusPending, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}
