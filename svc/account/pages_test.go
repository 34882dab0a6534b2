package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quitplan/quitplan/svc/account"
)

func TestPageDepth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		page  string
		depth int
	}{
		{"/", 0},
		{"/information", 1},
		{"/income", 4},
		{"/scenario-result", 8},
		{"/unknown", -1},
		{"", -1},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.depth, account.PageDepth(tc.page), "page %q", tc.page)
	}

	assert.Greater(t, account.PageDepth("/scenario"), account.PageDepth("/costs"))
}
