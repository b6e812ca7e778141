package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/zuno-wallet/zuno-go/internal/client/api"
	"github.com/zuno-wallet/zuno-go/internal/common"
)

// Wallets lists the mirrored wallets, primary first.
func (a *App) Wallets(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	ctx, cancel := shortTimeout(ctx)
	defer cancel()

	list, err := a.wallets.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No wallets yet. Use 'newwallet' to create one.")
		return nil
	}

	for _, w := range list {
		marker := " "
		if w.IsPrimary {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %s %s (%s USD)\n", marker, w.ID, w.Network, w.Balance, "tokens", w.BalanceUSD)
	}
	return nil
}

// NewWallet provisions a wallet on the preferred network.
func (a *App) NewWallet(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	network, err := GetSimpleText(a.reader, "Network (empty for default)", os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := shortTimeout(ctx)
	defer cancel()

	w, err := a.wallets.Create(ctx, network)
	if err != nil {
		return err
	}
	fmt.Printf("Created wallet %s on %s (%s)\n", w.ID, w.Network, w.Address)
	return nil
}

// SetPrimary moves the primary flag: setprimary <wallet-id>.
func (a *App) SetPrimary(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	if len(args) != 1 {
		return errors.New("usage: setprimary <wallet-id>")
	}

	if err := a.wallets.SetPrimary(ctx, args[0]); err != nil {
		if errors.Is(err, common.ErrWalletNotFound) {
			return fmt.Errorf("no wallet %s", args[0])
		}
		return err
	}
	fmt.Printf("Wallet %s is now primary.\n", args[0])
	return nil
}

// Send submits a payment to a tag or an address.
func (a *App) Send(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	wallets, err := a.wallets.List(ctx)
	if err != nil {
		return err
	}
	if len(wallets) == 0 {
		return errors.New("no wallet to send from")
	}
	from := wallets[0] // primary first

	recipient, err := GetSimpleText(a.reader, "Recipient (@tag or 0x address)", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := GetSimpleText(a.reader, "Amount", os.Stdout)
	if err != nil {
		return err
	}
	token, err := GetSimpleText(a.reader, "Token symbol (e.g. USDC)", os.Stdout)
	if err != nil {
		return err
	}

	req := api.SendRequest{WalletID: from.ID, Amount: amount, TokenSymbol: token}
	if len(recipient) > 1 && recipient[0] == '@' {
		req.RecipientTag = recipient
	} else {
		req.ToAddress = recipient
	}

	ctx, cancel := shortTimeout(ctx)
	defer cancel()

	tx, err := a.wallets.Send(ctx, req)
	if err != nil {
		if errors.Is(err, common.ErrInsufficientBalance) {
			return errors.New("insufficient balance")
		}
		return err
	}

	fmt.Printf("Sent %s %s (tx %s, status %s)\n", tx.Amount, tx.TokenSymbol, tx.ID, tx.Status)
	return nil
}

// Transactions lists a wallet's history: txs [wallet-id].
func (a *App) Transactions(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	ctx, cancel := shortTimeout(ctx)
	defer cancel()

	walletID := ""
	if len(args) > 0 {
		walletID = args[0]
	} else {
		list, err := a.wallets.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return errors.New("no wallets")
		}
		walletID = list[0].ID
	}

	txs, err := a.wallets.Transactions(ctx, walletID, 25)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Println("No transactions.")
		return nil
	}

	for _, tx := range txs {
		to := tx.ToAddress
		if tx.RecipientTag != "" {
			to = "@" + tx.RecipientTag
		}
		fmt.Printf("%s  %-8s %-10s %s %s -> %s\n",
			tx.CreatedAt.Format("2006-01-02 15:04"), tx.Type, tx.Status, tx.Amount, tx.TokenSymbol, to)
	}
	return nil
}

// Watch reports the push channel state and (re)starts it if needed.
func (a *App) Watch(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	a.startWatch(context.WithoutCancel(ctx))
	if a.channel != nil && a.channel.Connected() {
		fmt.Println("Watching for updates (live).")
	} else {
		fmt.Println("Watching for updates (connecting; polling until the socket is up).")
	}
	return nil
}
