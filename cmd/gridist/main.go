package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/gridist/gridist"
	"github.com/gridist/gridist/layout"
	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func layoutFlags() []cli.Flag {
	d := layout.Default()
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "container-width",
			EnvVars: []string{"GRIDIST_CONTAINER_WIDTH"},
			Value:   d.ContainerWidth,
			Usage:   "width of the container holding all cards",
		},
		&cli.IntFlag{
			Name:    "cut-width",
			EnvVars: []string{"GRIDIST_CUT_WIDTH"},
			Value:   d.CutWidth,
			Usage:   "width of each tile",
		},
		&cli.IntFlag{
			Name:    "cut-height",
			EnvVars: []string{"GRIDIST_CUT_HEIGHT"},
			Value:   d.CutHeight,
			Usage:   "height of each tile",
		},
		&cli.IntFlag{
			Name:    "padding-top",
			EnvVars: []string{"GRIDIST_PADDING_TOP"},
			Value:   d.PaddingTop,
			Usage:   "padding above each tile within its card",
		},
		&cli.IntFlag{
			Name:    "padding-horizontal",
			EnvVars: []string{"GRIDIST_PADDING_HORIZONTAL"},
			Value:   d.PaddingHorizontal,
			Usage:   "padding between each column and the container edge",
		},
		&cli.IntFlag{
			Name:    "padding-bottom",
			EnvVars: []string{"GRIDIST_PADDING_BOTTOM"},
			Value:   d.PaddingBottom,
			Usage:   "padding below each tile within its card",
		},
		&cli.IntFlag{
			Name:    "margin-bottom",
			EnvVars: []string{"GRIDIST_MARGIN_BOTTOM"},
			Value:   d.MarginBottom,
			Usage:   "margin between rows of cards",
		},
		&cli.StringFlag{
			Name:    "palette",
			EnvVars: []string{"GRIDIST_PALETTE"},
			Value:   gridist.PaletteAuto.String(),
			Usage:   "palette for animated tiles, auto or median",
		},
		&cli.IntFlag{
			Name:    "workers",
			EnvVars: []string{"GRIDIST_WORKERS"},
			Usage:   "frames processed concurrently, 0 for one per CPU",
		},
	}
}

func newCropper(c *cli.Context, db *gridist.TileDB) (*gridist.Cropper, error) {
	strategy, err := gridist.ParsePaletteStrategy(c.String("palette"))
	if err != nil {
		return nil, err
	}

	return gridist.New(layout.Config{
		ContainerWidth:    c.Int("container-width"),
		CutWidth:          c.Int("cut-width"),
		CutHeight:         c.Int("cut-height"),
		PaddingTop:        c.Int("padding-top"),
		PaddingHorizontal: c.Int("padding-horizontal"),
		PaddingBottom:     c.Int("padding-bottom"),
		MarginBottom:      c.Int("margin-bottom"),
	}, gridist.Options{
		Workers:   c.Int("workers"),
		Palette:   strategy,
		OutputDir: c.String("output-dir"),
		DB:        db,
	}, newLogger(c))
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal(err)
	}

	app := cli.NewApp()

	app.Name = "gridist"
	app.Usage = "Cut an image or animated GIF into a six card grid"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			EnvVars: []string{"GRIDIST_VERBOSE"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "crop",
			Usage:       "Cut an image into six tiles",
			Description: "Writes <stem>.<slot>.<ext> for each of the six slots; animated GIFs produce animated tiles",
			ArgsUsage:   "FILE",
			Flags: append(layoutFlags(),
				&cli.StringFlag{
					Name:    "output-dir",
					Aliases: []string{"o"},
					EnvVars: []string{"GRIDIST_OUTPUT_DIR"},
					Usage:   "directory to write tiles to",
				},
				&cli.StringFlag{
					Name:    "cache",
					EnvVars: []string{"GRIDIST_CACHE"},
					Usage:   "path to a tile cache database",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				var db *gridist.TileDB
				if path := c.String("cache"); path != "" {
					var err error
					if db, err = gridist.OpenTileDB(path); err != nil {
						return cli.NewExitError(err, 1)
					}
					defer db.Close()
				}

				cropper, err := newCropper(c, db)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				paths, err := cropper.CropFile(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, p := range paths {
					fmt.Println(p)
				}

				return nil
			},
		},
		{
			Name:        "palette",
			Usage:       "Print the palette animated tiles would use",
			Description: "Prints one line per palette entry with its index and hex color. The source GIF is decoded but no tiles are written",
			ArgsUsage:   "FILE",
			Flags:       layoutFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cropper, err := newCropper(c, nil)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				p, err := cropper.Palette(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for i, col := range p {
					cf, _ := colorful.MakeColor(col)
					fmt.Printf("%3d %s\n", i, cf.Hex())
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
