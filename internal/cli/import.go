package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vocab-drill-service/internal/config"
	"vocab-drill-service/internal/domain"
	"vocab-drill-service/internal/infra/memory"
	redisinfra "vocab-drill-service/internal/infra/redis"
	"vocab-drill-service/internal/quiz"
)

// NewImportCmd merges a bulk word list into a user's stored record.
func NewImportCmd(configPath *string) *cobra.Command {
	var username, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a bulk word list into a user's record",
		Long:  "Each line is term,secondary,meaning or term,meaning; '=' may be used instead of ','.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), *configPath, username, text, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username whose record receives the words")
	cmd.Flags().StringVar(&file, "file", "-", "word list path, or - for stdin")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), errors.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return string(data), nil
}

func runImport(ctx context.Context, configPath, username, text string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	if !b.persistent {
		return errors.New("import needs postgres.url or gateway.baseUrl configured")
	}

	today := time.Now().UTC().Format("2006-01-02")
	added, err := importWords(ctx, b.gateway, username, text, today)
	if err != nil {
		return err
	}
	if b.redis != nil {
		cache := redisinfra.NewRecordRepository(b.redis, b.gateway, 0, logger)
		if err := cache.Invalidate(ctx, username); err != nil {
			logger.Warn("cache invalidation failed", zap.String("username", username), zap.Error(err))
		}
	}
	logger.Info("import finished", zap.String("username", username), zap.Int("added", added))
	_, err = fmt.Fprintf(out, "imported %d new words for %s\n", added, username)
	return err
}

// importWords merges parsed entries into the user's record, creating the
// record when the user does not exist yet.
func importWords(ctx context.Context, gateway memory.RecordGateway, username, text, today string) (int, error) {
	record, err := gateway.LoadUser(ctx, username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		record = domain.UserRecord{Username: username}
	case err != nil:
		return 0, err
	}

	book := quiz.NewBook(record)
	added := book.Import(quiz.ParseBulk(text, today))
	if added == 0 {
		return 0, nil
	}
	if err := gateway.SaveUser(ctx, book.Snapshot(record)); err != nil {
		return 0, errors.Wrap(err, "save record")
	}
	return added, nil
}
