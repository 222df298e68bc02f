package bot

import (
	"fmt"
	"strings"

	"github.com/webuild-community/honor/model"
	"github.com/webuild-community/honor/service/transaction"
)

const (
	MsgAlreadyRegistered = "You are already registered."
	MsgRegisterFailed    = "Registration failed, please try again later."
	MsgBalanceFailed     = "Cannot read your balance right now, please try again later."
	MsgShopEmpty         = "The supply is currently empty."
	MsgShopFailed        = "Failed to open the shop."
	MsgBuyUsage          = "Usage: `!buy <item id>` (see `!shop` for item ids)"
	MsgItemUnavailable   = "Item not found or unavailable."
	MsgOutOfStock        = "This item is out of stock!"
	MsgNotRegistered     = "You are not registered yet, use `!start` first."
	MsgTransactionFailed = "An error occurred while processing the transaction."

	ShopTitle  = "Honor Exchange"
	ShopFooter = "Use !buy <item id> to redeem"
)

func Registered(username string) string {
	return fmt.Sprintf("Welcome, **%s**! You start with **%d** points.", username, model.StartingPoints)
}

func Balance(username string, points int64) string {
	return fmt.Sprintf("**%s**, you have **%d** points.", username, points)
}

func InsufficientBalance(cost, balance int64) string {
	return fmt.Sprintf("Not enough points! You need **%d** but have only **%d**.", cost, balance)
}

func Redeemed(r transaction.Receipt) string {
	return fmt.Sprintf("**Deal sealed!** You redeemed **%s** for %d points. Receipt: `%s`",
		r.Item.Name, r.Redemption.Cost, r.Redemption.Code)
}

// ItemLine is the one-line body of an item in the shop listing.
func ItemLine(it model.Item) string {
	desc := it.Description
	if desc == "" {
		desc = "-"
	}
	return fmt.Sprintf("%d points | stock: %s\n%s", it.Cost, it.StockLabel(), desc)
}

func ItemTitle(it model.Item) string {
	return fmt.Sprintf("%s (ID: %d)", it.Name, it.ID)
}

// PlainCatalog renders the shop for transports without rich layouts.
func PlainCatalog(items []model.Item) string {
	var sb strings.Builder
	sb.WriteString("**" + ShopTitle + "**\n")
	for _, it := range items {
		fmt.Fprintf(&sb, "\n**%s**\n%s\n", ItemTitle(it), ItemLine(it))
	}
	sb.WriteString("\n" + ShopFooter)
	return sb.String()
}
