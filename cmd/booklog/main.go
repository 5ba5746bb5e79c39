// Command booklog is the command-line front end of the book catalog.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"booklog/internal/config"
	"booklog/internal/library"
	"booklog/internal/openbd"
	"booklog/internal/storage/jsonfile"
)

const usage = `Usage: booklog <command> [arguments]

Commands:
  add <isbn>                       ISBNから本を登録
  list                             本の一覧を表示
  show <book-id>                   本の詳細と感想を表示
  update <book-id> [flags]         本の情報を更新
  delete <book-id> [--yes]         本を削除 (感想・履歴も削除)
  impression <subcommand>          感想の管理 (add/show/update/delete/list)
  status <subcommand>              読書ステータスの管理 (set/show/list)
  history <book-id>                ステータス変更履歴を表示
  covers                           表紙URLが未設定の本を補完
  generate-site [--out <dir>]      静的サイトを生成
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// .env is optional for the CLI.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("✗ 設定エラー: %v", err)
	}

	svc, err := buildServices(cfg)
	if err != nil {
		fatal(err)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "add":
		runAdd(svc, args)
	case "list":
		runList(svc)
	case "show":
		runShow(svc, args)
	case "update":
		runUpdate(svc, args)
	case "delete":
		runDelete(svc, args)
	case "impression":
		runImpression(svc, args)
	case "status":
		runStatus(svc, args)
	case "history":
		runHistory(svc, args)
	case "covers":
		runCovers(svc)
	case "generate-site":
		runGenerateSite(svc, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

// buildServices wires storage and services for one invocation and runs the
// v1 to v2 migration before anything reads the collections.
func buildServices(cfg *config.Config) (*library.Service, error) {
	store, err := jsonfile.New(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	// The CLI keeps zap quiet so command output stays clean.
	logger, err := zap.NewProduction(zap.IncreaseLevel(zap.WarnLevel))
	if err != nil {
		return nil, err
	}

	svc := library.New(store, openbd.New(cfg.OpenBDBaseURL, logger), logger)
	if _, err := svc.Migrator.MigrateFromV1(); err != nil {
		return nil, err
	}
	return svc, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "✗ エラー: %v\n", err)
	os.Exit(1)
}
