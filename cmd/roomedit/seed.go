package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fpang/roomedit/internal/cli"
	"github.com/fpang/roomedit/internal/store"
)

var (
	seedRoomID string
	seedImage  string
	seedPick   bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Start a room from an existing photo",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := seedImage
		if seedPick {
			var err error
			if path, err = pickImage(); err != nil {
				return err
			}
		}
		if path == "" {
			return errors.New("pass --image or --pick")
		}
		orch, err := newOrchestrator(cmd.Context())
		if err != nil {
			return err
		}
		state, err := seedRoom(cmd.Context(), orch, seedRoomID, path)
		if err != nil {
			return err
		}
		fmt.Printf("Room %s starts from %s\n", seedRoomID, state.Image)
		cli.PrintCatalog(os.Stdout, state.Catalog)
		return nil
	},
}

var showRoomID string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a room's latest image and objects",
	RunE: func(cmd *cobra.Command, args []string) error {
		states, err := store.NewFileStore(filepath.Join(homeFlag, "rooms"))
		if err != nil {
			return err
		}
		state, err := states.GetState(cmd.Context(), showRoomID)
		if err != nil {
			return err
		}
		if state == nil {
			return fmt.Errorf("room %q has no image yet", showRoomID)
		}
		fmt.Printf("Image: %s\n", state.Image)
		if state.Parent != "" {
			fmt.Printf("Parent: %s\n", state.Parent)
		}
		fmt.Printf("Objects (%s):\n", state.CatalogStatus)
		cli.PrintCatalog(os.Stdout, state.Catalog)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedRoomID, "room", "r", "default", "Room id")
	seedCmd.Flags().StringVar(&seedImage, "image", "", "Path to a JPEG or PNG")
	seedCmd.Flags().BoolVar(&seedPick, "pick", false, "Choose the photo with a file dialog")

	showCmd.Flags().StringVarP(&showRoomID, "room", "r", "default", "Room id")
}
