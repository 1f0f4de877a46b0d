// Package build packages generated apps into standalone executables and
// installers.
//
// Packaging shells out to the Node toolchain through an execx.Runner:
//
//	npm install --save-dev electron-packager electron
//	npx electron-packager . "<name>" --platform=<p> --arch=<a> --out=dist --overwrite --asar
//	npm install --save-dev electron-builder            (with Setup)
//	npx electron-builder --<win|mac|linux> --<arch>    (with Setup)
//
// # Usage
//
//	b := build.New(runner, logger)
//	result, err := b.Build(ctx, appDir, "github.com", iconPath, build.Options{
//	    Platform: "linux",
//	    Setup:    true,
//	})
//	if err != nil {
//	    return err
//	}
//	err = build.Export(result.ExecutableDir, filepath.Join(outputDir, "github.com-linux-x64"))
//
// # Output Structure
//
//	<appDir>/
//	├── dist/<name>-<platform>-<arch>/   # packaged executable
//	└── installer/                       # electron-builder output
package build
