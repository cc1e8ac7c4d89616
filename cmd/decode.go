package cmd

import (
	"fmt"
	"os"

	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/config"
	"github.com/sergev/amigatrk/container"
	"github.com/sergev/amigatrk/handler"
	_ "github.com/sergev/amigatrk/handlers" // register concrete track-type handlers
	"github.com/sergev/amigatrk/track"

	"github.com/spf13/cobra"
)

// A raw track dump is the bit-packed, MSB-first contents of one revolution:
// a 4-byte big-endian bit count followed by ceil(bits/8) bytes.
func loadRawTrack(path string) (*bitstream.RawStream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("decode: %s: too short for a bit-count header", path)
	}
	totalBits := int(data[0])<<24 | int(data[1])<<16 | int(data[2])<<8 | int(data[3])
	revolution := data[4:]
	if totalBits > len(revolution)*8 {
		return nil, fmt.Errorf("decode: %s: bit count %d exceeds %d payload bytes", path, totalBits, len(revolution))
	}
	return bitstream.New(revolution, totalBits), nil
}

var decodeFixture string

var decodeCmd = &cobra.Command{
	Use:   "decode [raw-track-file]",
	Short: "Recognize and decode one raw MFM track dump",
	Long:  "Runs every registered track-type handler against a raw track dump in registration order, reporting the first one that recognizes it. The dump is named either as a positional file path or, via --fixture, as a name resolved through the configured fixture profile.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := decodeTrackPath(args)
		if err != nil {
			return err
		}
		s, err := loadRawTrack(path)
		if err != nil {
			return err
		}
		d := container.NewDisk(1)
		tag, ok := d.DecodeAuto(0, s)
		if !ok {
			fmt.Println("no handler recognized this track")
			return nil
		}
		info := d.Tracks[0]
		fmt.Printf("recognized as %s: %d bytes, %d sector(s), bit offset %d\n",
			tag, info.Len, info.NrSectors, info.DataBitoff)
		return nil
	},
}

// decodeTrackPath resolves the track dump to decode from either a
// positional path or the --fixture flag, never both.
func decodeTrackPath(args []string) (string, error) {
	switch {
	case decodeFixture != "" && len(args) == 1:
		return "", fmt.Errorf("decode: pass either a file path or --fixture, not both")
	case decodeFixture != "":
		if err := config.Initialize(); err != nil {
			return "", fmt.Errorf("decode: %w", err)
		}
		return config.GetFixtureFilename(decodeFixture)
	case len(args) == 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("decode: requires a raw-track-file argument or --fixture")
	}
}

var listHandlersCmd = &cobra.Command{
	Use:   "list-handlers",
	Short: "List registered track-type handlers",
	Long:  "Prints the tag of every registered track-type handler, in a fixed tag order. This is not the order in which decode tries the handlers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, tag := range []track.Type{
			track.RTypeA, track.RTypeB,
			track.ProtecLongtrack, track.GremlinLongtrack, track.TiertexLongtrack,
			track.CrystalsOfArboreaLongtrack, track.InfogramesLongtrack,
			track.BatLongtrack, track.AppLongtrack, track.SevenCitiesLongtrack,
			track.EmptyLongtrack,
		} {
			if _, ok := handler.Get(tag); ok {
				fmt.Println(tag)
			}
		}
		return nil
	},
}

func init() {
	handler.Seal()
	decodeCmd.Flags().StringVar(&decodeFixture, "fixture", "", "decode a named fixture from the configured profile instead of a file path")
	rootCmd.AddCommand(decodeCmd, listHandlersCmd)
}
