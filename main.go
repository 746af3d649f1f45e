package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/ai-toolkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("ai-toolkit failed")
		os.Exit(1)
	}
}
