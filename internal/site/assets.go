package site

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

//go:embed assets/site.css
var siteCSS string

//go:embed assets/site.js
var siteJS string

// buildAssets returns the site CSS and JS, run through esbuild. Without
// minification esbuild still validates the sources, so a broken stylesheet
// fails the build instead of shipping.
func buildAssets(minify bool) (css, js string, err error) {
	css, err = transformAsset(siteCSS, "site.css", api.LoaderCSS, minify)
	if err != nil {
		return "", "", err
	}
	js, err = transformAsset(siteJS, "site.js", api.LoaderJS, minify)
	if err != nil {
		return "", "", err
	}
	return css, js, nil
}

func transformAsset(source, name string, loader api.Loader, minify bool) (string, error) {
	opts := api.TransformOptions{
		Loader:     loader,
		Sourcefile: name,
		Target:     api.ES2020,
	}
	if minify {
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
	}

	result := api.Transform(source, opts)
	if len(result.Errors) > 0 {
		var msgs []string
		for _, e := range result.Errors {
			if e.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%s:%d:%d: %s", e.Location.File, e.Location.Line, e.Location.Column, e.Text))
			} else {
				msgs = append(msgs, e.Text)
			}
		}
		return "", fmt.Errorf("esbuild errors:\n%s", strings.Join(msgs, "\n"))
	}
	return string(result.Code), nil
}

// liveReloadScript is appended to the JS bundle in watch mode.
const liveReloadScript = `
;(function() {
  var es = new EventSource('/__reload');
  es.onmessage = function(e) {
    if (e.data === 'reload') {
      console.log('[sqldoc] Reloading...');
      window.location.reload();
    }
  };
  es.onerror = function() {
    console.log('[sqldoc] Connection lost, reconnecting...');
    setTimeout(function() { window.location.reload(); }, 1000);
  };
})();
`
