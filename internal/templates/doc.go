// Package templates generates the Electron project of a u2a app.
//
// A generated app is two files:
//
//	main.js       - entry script opening a BrowserWindow on the site URL
//	package.json  - npm manifest with the Electron dependency and the
//	                electron-builder configuration
//
// # Usage
//
//	cfg := templates.Config{
//	    Name:     "github.com",
//	    URL:      "https://github.com",
//	    IconPath: "/home/me/.u2a/icons/github.com.ico",
//	}
//	if err := templates.Generate(appDir, cfg); err != nil {
//	    return err
//	}
//
// # Template Variables
//
// The entry script is rendered from an embedded text/template:
//
//	{{.Name}}      - application name (JS-escaped)
//	{{.URL}}       - site URL (JS-escaped)
//	{{.IconPath}}  - icon path (JS-escaped)
//	{{.Width}}     - initial window width
//	{{.Height}}    - initial window height
//
// The window size is rendered as "const WINDOW_WIDTH = N;" so WindowSize
// can recover it when an app is regenerated.
package templates
