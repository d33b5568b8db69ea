package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/platform-cli/pkg/config"
	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
)

func TestResolveImage(t *testing.T) {
	v := NewValidator(config.DefaultComputePolicy())

	for _, alias := range []string{"amazon-linux", "Amazon-Linux", "UBUNTU"} {
		ami, err := v.ResolveImage(alias)
		require.NoError(t, err, alias)
		assert.NotEmpty(t, ami)
	}

	for _, alias := range []string{"", "debian", "ami-0532be01f26a3de55"} {
		_, err := v.ResolveImage(alias)
		require.Error(t, err, alias)
		assert.True(t, errors.Is(err, errs.ErrValidation))
		assert.Equal(t, "Unsupported AMI specified. Use amazon-linux or ubuntu.", err.Error())
	}
}

func TestCheckInstanceType(t *testing.T) {
	v := NewValidator(config.DefaultComputePolicy())

	assert.NoError(t, v.CheckInstanceType("t2.small"))
	assert.NoError(t, v.CheckInstanceType("t3.micro"))

	err := v.CheckInstanceType("m5.large")
	require.Error(t, err)
	assert.Equal(t, "m5.large is not allowed. Use only t2.small or t3.micro", err.Error())
	assert.Error(t, v.CheckInstanceType("T3.MICRO"))
}

func TestCheckCount(t *testing.T) {
	v := NewValidator(config.DefaultComputePolicy())

	tests := []struct {
		count int
		ok    bool
	}{
		{-1, false}, {0, false}, {1, true}, {2, true}, {3, false},
	}
	for _, tt := range tests {
		err := v.CheckCount(tt.count)
		if tt.ok {
			assert.NoError(t, err, tt.count)
			continue
		}
		require.Error(t, err, tt.count)
		assert.True(t, errors.Is(err, errs.ErrValidation))
	}
	assert.Equal(t, "You can create only 1 or 2 instances at a time. You requested 3 instances.", v.CheckCount(3).Error())
}

func TestCheckQuota(t *testing.T) {
	v := NewValidator(config.DefaultComputePolicy())

	assert.NoError(t, v.CheckQuota(0, 2))
	assert.NoError(t, v.CheckQuota(1, 1))

	for _, tt := range [][2]int{{1, 2}, {2, 1}, {3, 1}} {
		err := v.CheckQuota(tt[0], tt[1])
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrQuotaExceeded))
	}
}

func TestParseAccess(t *testing.T) {
	got, err := ParseAccess("Public")
	require.NoError(t, err)
	assert.Equal(t, AccessPublic, got)

	_, err = ParseAccess("internal")
	require.Error(t, err)
	assert.Equal(t, "Invalid access level. Use 'private' or 'public'.", err.Error())
}

func TestParseInstanceAction(t *testing.T) {
	got, err := ParseInstanceAction("STOP")
	require.NoError(t, err)
	assert.Equal(t, ActionStop, got)

	_, err = ParseInstanceAction("reboot")
	require.Error(t, err)
	assert.Equal(t, "Invalid action. Use 'start' or 'stop'.", err.Error())
}

func TestParseRecordAction(t *testing.T) {
	tests := map[string]string{
		"create": RecordCreate,
		"Update": RecordUpsert,
		"UPSERT": RecordUpsert,
		"delete": RecordDelete,
	}
	for in, want := range tests {
		got, err := ParseRecordAction(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRecordAction("rename")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Equal(t, "Invalid action. Use 'create', 'update', or 'delete'.", err.Error())
}
