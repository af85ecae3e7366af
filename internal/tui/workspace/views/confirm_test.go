package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmTwoClicksWithinWindow(t *testing.T) {
	var c Confirm

	confirmed, cmd := c.Click()
	assert.False(t, confirmed)
	assert.NotNil(t, cmd, "arming starts the disarm timer")
	assert.True(t, c.Armed())

	confirmed, cmd = c.Click()
	assert.True(t, confirmed)
	assert.Nil(t, cmd)
	assert.False(t, c.Armed())
}

func TestConfirmExpiryDisarmsAndReArmsCleanly(t *testing.T) {
	var c Confirm

	_, _ = c.Click()
	require.True(t, c.Armed())

	c.Update(confirmExpiredMsg{seq: c.seq})
	assert.False(t, c.Armed(), "window elapsed, control reverts")

	// A later single click must re-arm from scratch, not confirm.
	confirmed, cmd := c.Click()
	assert.False(t, confirmed)
	assert.NotNil(t, cmd)
	assert.True(t, c.Armed())
}

func TestConfirmStaleTickIgnored(t *testing.T) {
	var c Confirm

	_, _ = c.Click()
	staleSeq := c.seq

	// Window elapses with no second click, then the user arms again.
	c.Update(confirmExpiredMsg{seq: staleSeq})
	_, _ = c.Click()
	require.True(t, c.Armed())

	// The first arming's tick arrives late. It must not disarm the
	// fresh arming.
	c.Update(confirmExpiredMsg{seq: staleSeq})
	assert.True(t, c.Armed())
}

func TestConfirmTimerCancelledByConfirm(t *testing.T) {
	var c Confirm

	_, _ = c.Click()
	armedSeq := c.seq
	confirmed, _ := c.Click()
	require.True(t, confirmed)

	// The arming's timer fires after the delete already ran. It must
	// not re-disarm or otherwise disturb the reset controller.
	c.Update(confirmExpiredMsg{seq: armedSeq})
	assert.False(t, c.Armed())

	confirmed, _ = c.Click()
	assert.False(t, confirmed, "post-confirm click arms again from scratch")
}

func TestConfirmDisarm(t *testing.T) {
	var c Confirm

	_, _ = c.Click()
	c.Disarm()
	assert.False(t, c.Armed())

	confirmed, _ := c.Click()
	assert.False(t, confirmed)
}
