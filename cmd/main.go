package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	_ "go.uber.org/automaxprocs"

	"github.com/baxromumarov/parfor"
)

func fetch(ctx context.Context, id int) (string, error) {
	select {
	case <-time.After(time.Duration(50+id*10) * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if id == 7 {
		return "", fmt.Errorf("record %d is corrupt", id)
	}
	return fmt.Sprintf("record-%d", id), nil
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	now := time.Now()

	records, err := parfor.For(
		context.Background(),
		parfor.Range(0, 12),
		fetch,
		parfor.WithPartitionSize(4),
		parfor.WithTimeout(5*time.Second),
		parfor.WithLogger(log),
		parfor.WithOnPartition(func(info parfor.PartitionInfo) {
			log.Info().
				Int("partition", info.Seq).
				Int("dispatched", info.Dispatched).
				Int("faults", info.Faults).
				Msg("partition complete")
		}),
	)
	if err != nil {
		log.Warn().Err(err).Msg("some iterations failed")
		for _, f := range parfor.FaultsOf(err) {
			log.Warn().Int("iteration", f.Index).Err(f.Err).Msg("fault")
		}
	}

	for _, r := range records {
		fmt.Println(r)
	}

	fmt.Println("Elapsed time:", time.Since(now))
}
