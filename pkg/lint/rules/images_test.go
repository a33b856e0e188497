package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIM01MissingImage(t *testing.T) {
	src := "# T\n\n![A plan](img/plan1.png)\n\n![Gone](img/plan9.png)\n"
	d, env := fixture(t, "article.md", src, map[string]string{
		"img/plan1.png": "png",
	})

	diags := checkMissingImage(d, env, nil)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `"img/plan9.png"`)
	assert.Equal(t, 5, diags[0].Pos.Line)
}

func TestIM01IgnoresExternalImages(t *testing.T) {
	src := "# T\n\n![Badge](https://img.shields.io/badge/ci-passing-green)\n"
	d, env := fixture(t, "article.md", src, nil)
	assert.Empty(t, checkMissingImage(d, env, nil))
}

func TestIM01FindsCaseInsensitiveMatch(t *testing.T) {
	// Wrong casing is IM05's finding; the file itself is not missing.
	src := "# T\n\n![Plan](img/Plan1.PNG)\n"
	d, env := fixture(t, "article.md", src, map[string]string{
		"img/plan1.png": "png",
	})
	assert.Empty(t, checkMissingImage(d, env, nil))
}

func TestIM03MissingAlt(t *testing.T) {
	src := "# T\n\n![](img/plan1.png)\n\n![  ](img/plan2.png)\n\n![Described](img/plan3.png)\n"
	d, env := fixture(t, "article.md", src, map[string]string{
		"img/plan1.png": "a",
		"img/plan2.png": "b",
		"img/plan3.png": "c",
	})

	diags := checkMissingAlt(d, env, nil)
	require.Len(t, diags, 2)
	assert.Equal(t, 3, diags[0].Pos.Line)
	assert.Equal(t, 5, diags[1].Pos.Line)
}

func TestIM04OffsiteImage(t *testing.T) {
	src := "# T\n\n![Ext](https://example.com/plan.png)\n\n![Abs](/var/www/plan.png)\n\n![Rel](img/plan1.png)\n"
	d, env := fixture(t, "article.md", src, map[string]string{
		"img/plan1.png": "a",
	})

	diags := checkOffsiteImage(d, env, nil)
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "external host")
	assert.Contains(t, diags[1].Message, "absolute path")
}

func TestIM04AllowExternalOption(t *testing.T) {
	src := "# T\n\n![Ext](https://example.com/plan.png)\n\n![Abs](/srv/plan.png)\n"
	d, env := fixture(t, "article.md", src, nil)

	diags := checkOffsiteImage(d, env, map[string]any{"allow_external": true})
	require.Len(t, diags, 1, "allow_external spares external hosts, not absolute paths")
	assert.Contains(t, diags[0].Message, "absolute path")
}

func TestIM05CaseMismatch(t *testing.T) {
	src := "# T\n\n![Plan](img/Plan1.PNG)\n\n![Plan](img/plan1.png)\n"
	d, env := fixture(t, "article.md", src, map[string]string{
		"img/plan1.png": "png",
	})

	diags := checkImageCase(d, env, nil)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `"img/Plan1.PNG"`)
	assert.Contains(t, diags[0].Message, `"plan1.png"`)
	assert.Equal(t, 3, diags[0].Pos.Line)
}

func TestIM05SilentWhenMissing(t *testing.T) {
	// A missing file is IM01's finding, not a casing problem.
	src := "# T\n\n![Plan](img/plan9.png)\n"
	d, env := fixture(t, "article.md", src, nil)
	assert.Empty(t, checkImageCase(d, env, nil))
}
