package cmd

import (
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-recap/internal/gateway"
)

// recapSource picks the source for a recap argument: an http(s) URL, a file
// path, or the configured data file inside the web root when arg is empty.
func recapSource(arg string, logger *zap.Logger) (gateway.Source, string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		u, err := url.Parse(arg)
		if err != nil {
			return nil, "", err
		}
		// the query belongs to the document, not to the base it is resolved against
		name := path.Base(u.Path)
		if u.RawQuery != "" {
			name += "?" + u.RawQuery
		}
		u.Path = path.Dir(u.Path)
		u.RawPath = ""
		u.RawQuery = ""
		u.Fragment = ""
		src, err := gateway.NewHTTPSource(&http.Client{Timeout: 30 * time.Second}, u.String(), logger)
		if err != nil {
			return nil, "", err
		}
		return src, name, nil
	}

	if arg == "" {
		return gateway.NewFileSource(afero.NewOsFs(), cfg.WebRoot, logger), cfg.DataFile, nil
	}
	return gateway.NewFileSource(afero.NewOsFs(), filepath.Dir(arg), logger), filepath.Base(arg), nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
