// internal/mote/queue_test.go
package mote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/swap-mote/internal/swap"
)

var notReceiving = []swap.State{swap.StateRxOff, swap.StateSync, swap.StateRestart, swap.StateLowBat, swap.State(42)}

func TestSaveCommand_QueuesWhenAsleep(t *testing.T) {
	for _, st := range notReceiving {
		t.Run(st.String(), func(t *testing.T) {
			srv := &fakeServer{ack: true}
			m := newTestMote(t, srv, true)
			m.mu.Lock()
			m.state = st
			m.mu.Unlock()

			before := m.NumSavedCommands()
			got := m.SaveCommand(context.Background(), 20, swap.NewValue(1, 1))

			assert.Equal(t, DeliveryPending, got)
			assert.Equal(t, before+1, m.NumSavedCommands())
			assert.Empty(t, srv.confirmed)
			assert.Empty(t, srv.sentPackets())
		})
	}
}

func TestSaveCommand_RxOnSendsConfirmed(t *testing.T) {
	for _, pwrDown := range []bool{true, false} {
		srv := &fakeServer{ack: true}
		m := newTestMote(t, srv, pwrDown)
		m.UpdateState(swap.StateRxOn)

		assert.Equal(t, DeliveryAcked, m.SaveCommand(context.Background(), 20, swap.NewValue(1, 1)))
		assert.Equal(t, 0, m.NumSavedCommands())
		assert.Len(t, srv.confirmed, 1)

		srv.ack = false
		assert.Equal(t, DeliveryFailed, m.SaveCommand(context.Background(), 20, swap.NewValue(1, 1)))
		assert.Equal(t, 0, m.NumSavedCommands())
	}
}

func TestSaveCommand_NoPowerDownNeverQueues(t *testing.T) {
	for _, st := range notReceiving {
		srv := &fakeServer{ack: false}
		m := newTestMote(t, srv, false)
		m.UpdateState(st)

		assert.Equal(t, DeliveryFailed, m.SaveCommand(context.Background(), 20, swap.NewValue(1, 1)))
		assert.Equal(t, 0, m.NumSavedCommands(), "state %s", st)
	}
}

func TestSaveTypedCommands(t *testing.T) {
	m := newTestMote(t, &fakeServer{}, true)

	assert.Equal(t, DeliveryPending, m.SaveAddressCommand(context.Background(), 9))
	assert.Equal(t, DeliveryPending, m.SaveTxIntervalCommand(context.Background(), 600))

	c, err := m.PopSavedCommand()
	require.NoError(t, err)
	assert.Equal(t, swap.RegDeviceAddr, c.RegID)
	assert.Equal(t, []byte{9}, c.Value.Bytes())

	c, err = m.PopSavedCommand()
	require.NoError(t, err)
	assert.Equal(t, swap.RegTxInterval, c.RegID)
	assert.Equal(t, []byte{0x02, 0x58}, c.Value.Bytes())

	// mirrored fields are untouched by queued commands
	assert.Equal(t, swap.DefaultMoteAddr, m.Address())
	assert.Equal(t, uint16(10), m.TxInterval())
}

func TestSaveTypedCommands_MirrorWhenAcked(t *testing.T) {
	ctx := context.Background()
	srv := &fakeServer{ack: true}
	m := newTestMote(t, srv, false, WithAddress(5))

	assert.Equal(t, DeliveryAcked, m.SaveTxIntervalCommand(ctx, 60))
	assert.Equal(t, DeliveryAcked, m.SaveAddressCommand(ctx, 9))
	assert.Equal(t, uint16(60), m.TxInterval())
	assert.Equal(t, uint16(9), m.Address())

	srv.ack = false
	assert.Equal(t, DeliveryFailed, m.SaveAddressCommand(ctx, 11))
	assert.Equal(t, uint16(9), m.Address())
}

func TestSaveAddressCommand_RejectsWideAddress(t *testing.T) {
	srv := &fakeServer{ack: true}
	m := newTestMote(t, srv, true)

	assert.Equal(t, DeliveryFailed, m.SaveAddressCommand(context.Background(), 0x1FF))
	assert.Equal(t, 0, m.NumSavedCommands())
	assert.Empty(t, srv.confirmed)
}

func TestConfirmAddress_AfterFlush(t *testing.T) {
	srv := &fakeServer{}
	m := newTestMote(t, srv, true, WithAddress(5))

	assert.False(t, m.ConfirmAddress(9), "nothing pending yet")

	require.Equal(t, DeliveryPending, m.SaveAddressCommand(context.Background(), 9))
	m.UpdateState(swap.StateRxOn)

	// fire-and-forget does not move the mirror
	assert.Equal(t, uint16(5), m.Address())
	assert.False(t, m.ConfirmAddress(8))
	assert.True(t, m.ConfirmAddress(9))
	assert.Equal(t, uint16(9), m.Address())
	assert.False(t, m.ConfirmAddress(9), "confirmation is consumed")
}

func TestConfirmAddress_FailedSendLeavesNothingPending(t *testing.T) {
	srv := &fakeServer{sendErr: errors.New("link down")}
	m := newTestMote(t, srv, true, WithAddress(5))

	m.SaveAddressCommand(context.Background(), 9)
	m.UpdateState(swap.StateRxOn)

	assert.False(t, m.ConfirmAddress(9))
	assert.Equal(t, uint16(5), m.Address())
}

func TestPopSavedCommand_Underflow(t *testing.T) {
	m := newTestMote(t, &fakeServer{}, true)
	_, err := m.PopSavedCommand()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestUpdateState_FlushesInOrder(t *testing.T) {
	for _, wake := range []swap.State{swap.StateRxOn, swap.StateSync} {
		t.Run(wake.String(), func(t *testing.T) {
			srv := &fakeServer{ack: true}
			m := newTestMote(t, srv, true, WithAddress(5))
			ctx := context.Background()

			m.SaveCommand(ctx, 20, swap.NewValue(0xA, 1))
			m.SaveCommand(ctx, 21, swap.NewValue(0xB, 1))
			m.SaveCommand(ctx, 22, swap.NewValue(0xC, 1))
			require.Equal(t, 3, m.NumSavedCommands())

			m.UpdateState(wake)

			sent := srv.sentPackets()
			require.Len(t, sent, 3)
			for i, id := range []swap.RegID{20, 21, 22} {
				assert.Equal(t, swap.FuncCommand, sent[i].Function)
				assert.Equal(t, id, sent[i].RegID)
				assert.Equal(t, uint16(5), sent[i].Dest)
			}
			assert.Equal(t, 0, m.NumSavedCommands())
			assert.Empty(t, srv.confirmed, "flush is fire-and-forget")
		})
	}
}

func TestUpdateState_NoFlushWhenAsleep(t *testing.T) {
	srv := &fakeServer{}
	m := newTestMote(t, srv, true)
	m.SaveCommand(context.Background(), 20, swap.NewValue(1, 1))

	m.UpdateState(swap.StateRxOff)
	m.UpdateState(swap.StateRestart)

	assert.Empty(t, srv.sentPackets())
	assert.Equal(t, 1, m.NumSavedCommands())
}

func TestUpdateState_EmptyQueueSendsNothing(t *testing.T) {
	srv := &fakeServer{}
	m := newTestMote(t, srv, true)

	m.UpdateState(swap.StateRxOn)
	m.UpdateState(swap.StateRxOn)

	assert.Empty(t, srv.sentPackets())
}

func TestUpdateState_CommandsQueuedDuringFlushWait(t *testing.T) {
	srv := &fakeServer{}
	m := newTestMote(t, srv, true)
	ctx := context.Background()

	m.SaveCommand(ctx, 20, swap.NewValue(1, 1))
	m.SaveCommand(ctx, 21, swap.NewValue(2, 1))

	// SYNC is receiving but not RXON, so SaveCommand keeps queueing during the flush.
	injected := false
	srv.onSend = func(p swap.Packet) {
		if !injected {
			injected = true
			assert.Equal(t, DeliveryPending, m.SaveCommand(ctx, 30, swap.NewValue(3, 1)))
		}
	}

	m.UpdateState(swap.StateSync)

	require.Len(t, srv.sentPackets(), 2)
	assert.Equal(t, 1, m.NumSavedCommands())

	srv.onSend = nil
	m.UpdateState(swap.StateRxOn)

	sent := srv.sentPackets()
	require.Len(t, sent, 3)
	assert.Equal(t, swap.RegID(30), sent[2].RegID)
	assert.Equal(t, 0, m.NumSavedCommands())
}

func TestUpdateState_EntriesRemovedBeforeTransmit(t *testing.T) {
	srv := &fakeServer{}
	m := newTestMote(t, srv, true)
	m.SaveCommand(context.Background(), 20, swap.NewValue(1, 1))

	var depthAtSend int
	srv.onSend = func(swap.Packet) { depthAtSend = m.NumSavedCommands() }

	m.UpdateState(swap.StateRxOn)
	assert.Equal(t, 0, depthAtSend)
}

func TestUpdateState_RecordsTimestamp(t *testing.T) {
	clk := &fakeClock{now: time.Unix(100, 0)}
	m := newTestMote(t, &fakeServer{}, true, WithClock(clk))

	clk.now = time.Unix(200, 0)
	m.UpdateState(swap.StateRxOff) // unchanged state still counts

	assert.Equal(t, time.Unix(200, 0), m.LastUpdate())
	assert.Equal(t, swap.StateRxOff, m.State())

	clk.now = time.Unix(250, 0)
	m.UpdateTimestamp()
	assert.Equal(t, time.Unix(250, 0), m.LastUpdate())
}
