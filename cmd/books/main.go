/*
main.go - Bookkeeping admin tool

PURPOSE:
  Inspects a ledger database from the command line: chart of accounts,
  single-account balances, and the trial balance. Read-only; postings
  happen through the application, never through this tool.

USAGE:
  books -db=./data/books.db accounts
  books -db=./data/books.db balance 2000-charity-a
  books -db=./data/books.db trial
  books -db=./data/books.db trial -charity=charity-a

COMMANDS:
  accounts   List the chart of accounts (active first, sorted by code)
  balance    Print one account's signed balance
  trial      Print total debits, total credits, and the difference

SEE ALSO:
  - store/sqlite/sqlite.go: the database this tool reads
  - ledger/trial.go: trial balance semantics
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/warp/charity-ledger/ledger"
	"github.com/warp/charity-ledger/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "books.db", "SQLite database path")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	switch flag.Arg(0) {
	case "accounts":
		err = listAccounts(ctx, store)
	case "balance":
		if flag.NArg() < 2 {
			usage()
		}
		err = printBalance(ctx, store, ledger.AccountCode(flag.Arg(1)))
	case "trial":
		err = printTrialBalance(ctx, store, flag.Args()[1:])
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: books [-db=path] accounts | balance <code> | trial [-charity=id]")
	os.Exit(2)
}

func listAccounts(ctx context.Context, store *sqlite.Store) error {
	accounts, err := store.Accounts(ctx, ledger.AccountFilter{})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tTYPE\tNAME\tCHARITY\tACTIVE")
	for _, a := range accounts {
		active := "yes"
		if !a.Active {
			active = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.Code, a.Type, a.Name, a.CharityID, active)
	}
	return w.Flush()
}

func printBalance(ctx context.Context, store *sqlite.Store, code ledger.AccountCode) error {
	account, err := store.AccountByCode(ctx, code)
	if err != nil {
		return err
	}
	balance, err := ledger.NewCalculator(store).Balance(ctx, code)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s (%s)\n%s\n", account.Code, account.Name, account.Type, balance)
	return nil
}

func printTrialBalance(ctx context.Context, store *sqlite.Store, args []string) error {
	fs := flag.NewFlagSet("trial", flag.ExitOnError)
	charityFlag := fs.String("charity", "", "restrict to one charity's transactions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var charity *ledger.CharityID
	if *charityFlag != "" {
		id := ledger.CharityID(*charityFlag)
		charity = &id
	}

	tb, err := ledger.NewReporter(store).TrialBalance(ctx, charity)
	if err != nil {
		return err
	}
	fmt.Printf("Total debits:   %s\n", tb.TotalDebits)
	fmt.Printf("Total credits:  %s\n", tb.TotalCredits)
	if tb.Balanced() {
		fmt.Println("Ledger is balanced.")
	} else {
		fmt.Printf("OUT OF BALANCE by %s\n", tb.Difference())
	}
	return nil
}
