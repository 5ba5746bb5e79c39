package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"booklog/internal/config"
	"booklog/internal/library"
	"booklog/internal/models"
	"booklog/internal/openbd"
	"booklog/internal/site"

	"go.uber.org/zap"
)

func runAdd(svc *library.Service, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: booklog add <isbn>")
		os.Exit(2)
	}
	book, err := svc.Books.Create(context.Background(), args[0])
	switch {
	case errors.Is(err, library.ErrDuplicateISBN):
		fmt.Fprintf(os.Stderr, "✗ ISBN重複エラー: %v\n", err)
		os.Exit(1)
	case errors.Is(err, openbd.ErrISBNNotFound):
		fmt.Fprintf(os.Stderr, "✗ エラー: ISBN '%s' が見つかりません\n", args[0])
		os.Exit(1)
	case err != nil:
		fatal(err)
	}
	fmt.Println("✓ 本を登録しました")
	fmt.Printf("  ID: %s\n", book.ID)
	fmt.Printf("  タイトル: %s\n", book.Title)
	fmt.Printf("  著者: %s\n", book.Author)
	fmt.Printf("  出版社: %s\n", book.Publisher)
}

func runList(svc *library.Service) {
	books, err := svc.Books.List()
	if err != nil {
		fatal(err)
	}
	if len(books) == 0 {
		fmt.Println("登録されている本がありません")
		return
	}
	fmt.Printf("\n登録されている本 (%d件):\n\n", len(books))
	for _, b := range books {
		printBook(b)
		fmt.Println()
	}
}

func printBook(b models.Book) {
	fmt.Printf("ID: %s\n", b.ID)
	fmt.Printf("  タイトル: %s\n", b.Title)
	fmt.Printf("  著者: %s\n", b.Author)
	fmt.Printf("  出版社: %s\n", b.Publisher)
	fmt.Printf("  出版日: %s\n", b.PublicationDate)
	fmt.Printf("  ISBN: %s\n", b.ISBN)
	fmt.Printf("  ステータス: %s\n", b.Status.Label())
	fmt.Printf("  登録日: %s\n", b.CreatedAt.Format("2006-01-02 15:04:05"))
}

func runShow(svc *library.Service, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: booklog show <book-id>")
		os.Exit(2)
	}
	book, err := svc.Books.Get(args[0])
	if err != nil {
		fatal(err)
	}
	printBook(book)
	if book.Description != "" {
		fmt.Printf("  内容: %s\n", book.Description)
	}

	impressions, err := svc.Impressions.ListByBook(book.ID)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("\n感想 (%d件):\n", len(impressions))
	for _, imp := range impressions {
		content, err := svc.Impressions.Read(imp.ID)
		var missing *library.MissingContentError
		if errors.As(err, &missing) {
			fmt.Printf("\n[%s] ✗ 感想ファイルが見つかりません: %s\n", imp.ID, missing.Path)
			continue
		}
		if err != nil {
			fatal(err)
		}
		fmt.Printf("\n[%s] (%s)\n%s\n", imp.ID, imp.UpdatedAt.Format("2006-01-02 15:04"), content)
	}
}

func runUpdate(svc *library.Service, args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	title := fs.String("title", "", "新しいタイトル")
	author := fs.String("author", "", "新しい著者")
	publisher := fs.String("publisher", "", "新しい出版社")
	pubDate := fs.String("pub-date", "", "新しい出版日 (YYYY-MM-DD)")
	description := fs.String("description", "", "新しい内容紹介")
	coverURL := fs.String("cover-url", "", "新しい表紙URL")
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: booklog update <book-id> [flags]")
		os.Exit(2)
	}
	bookID := args[0]
	_ = fs.Parse(args[1:])

	var upd library.BookUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			upd.Title = title
		case "author":
			upd.Author = author
		case "publisher":
			upd.Publisher = publisher
		case "pub-date":
			upd.PublicationDate = pubDate
		case "description":
			upd.Description = description
		case "cover-url":
			upd.CoverURL = coverURL
		}
	})

	book, err := svc.Books.Update(bookID, upd)
	if err != nil {
		fatal(err)
	}
	fmt.Println("✓ 本の情報を更新しました")
	printBook(book)
}

func runDelete(svc *library.Service, args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "確認なしで削除")
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: booklog delete <book-id> [--yes]")
		os.Exit(2)
	}
	bookID := args[0]
	_ = fs.Parse(args[1:])

	if !*yes && !confirm(fmt.Sprintf("本 %s を削除しますか? 感想と履歴も削除されます", bookID)) {
		fmt.Println("キャンセルしました")
		return
	}
	if err := svc.Books.Delete(bookID); err != nil {
		fatal(err)
	}
	fmt.Println("✓ 本を削除しました")
}

func runImpression(svc *library.Service, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: booklog impression add|show|update|delete|list ...")
		os.Exit(2)
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		if len(rest) != 2 {
			fmt.Fprintln(os.Stderr, "usage: booklog impression add <book-id> <content>")
			os.Exit(2)
		}
		imp, err := svc.Impressions.Create(rest[0], rest[1])
		if err != nil {
			fatal(err)
		}
		fmt.Println("✓ 感想を登録しました")
		fmt.Printf("  ID: %s\n  ファイル: %s\n", imp.ID, imp.FilePath)
	case "show":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "usage: booklog impression show <impression-id>")
			os.Exit(2)
		}
		content, err := svc.Impressions.Read(rest[0])
		if err != nil {
			fatal(err)
		}
		fmt.Println(content)
	case "update":
		if len(rest) != 2 {
			fmt.Fprintln(os.Stderr, "usage: booklog impression update <impression-id> <content>")
			os.Exit(2)
		}
		if _, err := svc.Impressions.Update(rest[0], rest[1]); err != nil {
			fatal(err)
		}
		fmt.Println("✓ 感想を更新しました")
	case "delete":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "usage: booklog impression delete <impression-id>")
			os.Exit(2)
		}
		if err := svc.Impressions.Delete(rest[0]); err != nil {
			fatal(err)
		}
		fmt.Println("✓ 感想を削除しました")
	case "list":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "usage: booklog impression list <book-id>")
			os.Exit(2)
		}
		impressions, err := svc.Impressions.ListByBook(rest[0])
		if err != nil {
			fatal(err)
		}
		for _, imp := range impressions {
			fmt.Printf("%s  %s  %s\n", imp.ID, imp.UpdatedAt.Format("2006-01-02 15:04"), imp.FilePath)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown impression subcommand %q\n", sub)
		os.Exit(2)
	}
}

func runStatus(svc *library.Service, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: booklog status set|show|list ...")
		os.Exit(2)
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "set":
		if len(rest) != 2 {
			fmt.Fprintln(os.Stderr, "usage: booklog status set <book-id> <積読|読書中|読了>")
			os.Exit(2)
		}
		status, ok := models.ParseStatus(rest[1])
		if !ok {
			fmt.Fprintf(os.Stderr, "✗ エラー: 不明なステータス %q (積読/読書中/読了)\n", rest[1])
			os.Exit(1)
		}
		book, err := svc.Status.ChangeStatus(rest[0], status)
		if err != nil {
			fatal(err)
		}
		fmt.Println("✓ ステータスを変更しました")
		fmt.Printf("  本: %s\n  新しいステータス: %s\n", book.Title, book.Status.Label())
	case "show":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "usage: booklog status show <book-id>")
			os.Exit(2)
		}
		status, err := svc.Status.GetStatus(rest[0])
		if err != nil {
			fatal(err)
		}
		fmt.Println(status.Label())
	case "list":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "usage: booklog status list <積読|読書中|読了>")
			os.Exit(2)
		}
		status, ok := models.ParseStatus(rest[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "✗ エラー: 不明なステータス %q\n", rest[0])
			os.Exit(1)
		}
		books, err := svc.Status.ListByStatus(status)
		if err != nil {
			fatal(err)
		}
		if len(books) == 0 {
			fmt.Printf("%sの本はありません\n", status.Label())
			return
		}
		for _, b := range books {
			fmt.Printf("%s  %s\n", b.ID, b.Title)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown status subcommand %q\n", sub)
		os.Exit(2)
	}
}

func runHistory(svc *library.Service, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: booklog history <book-id>")
		os.Exit(2)
	}
	history, err := svc.Status.ListHistory(args[0])
	if err != nil {
		fatal(err)
	}
	if len(history) == 0 {
		fmt.Println("ステータス変更履歴はありません")
		return
	}
	for _, h := range history {
		fmt.Printf("%s  %s → %s\n", h.ChangedAt.Format("2006-01-02 15:04:05"), h.OldStatus.Label(), h.NewStatus.Label())
	}
}

func runCovers(svc *library.Service) {
	updated, err := svc.Books.FetchMissingCovers(context.Background())
	if err != nil {
		fatal(err)
	}
	fmt.Printf("✓ %d件の表紙URLを補完しました\n", updated)
}

func runGenerateSite(svc *library.Service, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("generate-site", flag.ExitOnError)
	out := fs.String("out", cfg.SiteDir, "出力ディレクトリ")
	_ = fs.Parse(args)

	gen := site.New(svc, zap.NewNop())
	if err := gen.Generate(*out); err != nil {
		fatal(err)
	}
	fmt.Printf("✓ 静的サイトを生成しました: %s\n", *out)
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
