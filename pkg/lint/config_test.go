package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

func TestConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.False(t, cfg.IsDisabled("IM01"))
	assert.Equal(t, core.SeverityError, cfg.GetSeverity("IM01", core.SeverityError))
	assert.Nil(t, cfg.GetRuleOptions("IM01"))
}

func TestConfigChaining(t *testing.T) {
	cfg := NewConfig().
		Disable("IM03").
		SetSeverity("AN01", core.SeverityWarning).
		SetRuleOption("AN03", "min_level", 2)

	assert.True(t, cfg.IsDisabled("IM03"))
	assert.Equal(t, core.SeverityWarning, cfg.GetSeverity("AN01", core.SeverityError))
	assert.Equal(t, map[string]any{"min_level": 2}, cfg.GetRuleOptions("AN03"))
}

func TestNilConfigIsAllDefaults(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.IsDisabled("IM01"))
	assert.Equal(t, core.SeverityHint, cfg.GetSeverity("IM03", core.SeverityHint))
	assert.Nil(t, cfg.GetRuleOptions("IM01"))
}

func TestFromCore(t *testing.T) {
	lc := &core.LintConfig{
		Disabled: []string{"IM03", "CB01"},
		Severity: map[string]string{"AN01": "warning"},
		Rules: map[string]core.RuleOptions{
			"AN03": {"min_level": 2, "max_level": 4},
		},
	}
	cfg, err := FromCore(lc)
	require.NoError(t, err)

	assert.True(t, cfg.IsDisabled("IM03"))
	assert.True(t, cfg.IsDisabled("CB01"))
	assert.False(t, cfg.IsDisabled("IM01"))
	assert.Equal(t, core.SeverityWarning, cfg.GetSeverity("AN01", core.SeverityError))
	assert.Equal(t, 4, GetIntOption(cfg.GetRuleOptions("AN03"), "max_level", 0))
}

func TestFromCoreRejectsBadSeverity(t *testing.T) {
	_, err := FromCore(&core.LintConfig{
		Severity: map[string]string{"AN01": "fatal"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatal")
}

func TestFromCoreNil(t *testing.T) {
	cfg, err := FromCore(nil)
	require.NoError(t, err)
	assert.False(t, cfg.IsDisabled("IM01"))
}
