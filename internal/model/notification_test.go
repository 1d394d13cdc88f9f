package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventTypePolicies(t *testing.T) {
	testCases := []struct {
		typ              EventType
		known            bool
		systemOriginated bool
		countsBadge      bool
	}{
		{EventLike, true, false, true},
		{EventComment, true, false, true},
		{EventFollow, true, false, true},
		{EventNewPost, true, false, true},
		{EventMessage, true, false, false},
		{EventCompliment, true, false, true},
		{EventStoryLike, true, false, true},
		{EventWalletReward, true, true, true},
		{EventNewOrder, true, false, true},
		{EventOrderPreparing, true, true, false},
		{EventOrderInProgress, true, true, false},
		{EventOrderCompleted, true, false, false},
		{EventType("flash_sale"), false, false, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.typ), func(t *testing.T) {
			assert.Equal(t, tc.known, tc.typ.Known())
			assert.Equal(t, tc.systemOriginated, tc.typ.SystemOriginated())
			assert.Equal(t, tc.countsBadge, tc.typ.CountsTowardBadge())
		})
	}
}
