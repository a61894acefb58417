// Package notify converts generic notification payloads into channel wire
// formats (Discord webhook embeds, Telegram bot messages, transactional
// email) and fans them out to subscribed users.
package notify

import "context"

// Category classifies a notification for statistics and per-user opt-in
// filtering.
type Category string

const (
	CategoryWhale        Category = "whale"
	CategoryContract     Category = "contract"
	CategoryNFT          Category = "nft"
	CategoryToken        Category = "token"
	CategorySwap         Category = "swap"
	CategorySubscription Category = "subscription"
	CategoryAlert        Category = "alert"
	CategoryFee          Category = "fee"
	CategoryBadge        Category = "badge"
)

// Field is one display row of a notification.
type Field struct {
	Label string
	Value string
}

// Notification is the channel-independent payload handed to every sender.
// It is passed by value and never mutated after construction.
type Notification struct {
	Title       string
	Message     string
	Category    Category
	Data        []Field
	TxHash      string
	BlockHeight int64
}

// Sender delivers one notification to one destination. Implementations
// never panic and never return an error: delivery problems are logged and
// reported as false.
type Sender interface {
	Name() string
	Send(ctx context.Context, destination string, n Notification) bool
}

// Fallbacks for categories without explicit styling.
const (
	defaultColor = 0x6b7280
	defaultEmoji = "\U0001F4E1"
)

var categoryColors = map[Category]int{
	CategoryWhale:        0x3b82f6,
	CategoryContract:     0x8b5cf6,
	CategoryNFT:          0xec4899,
	CategoryToken:        0x10b981,
	CategorySwap:         0xf59e0b,
	CategorySubscription: 0x6366f1,
	CategoryAlert:        0xef4444,
	CategoryFee:          0x14b8a6,
	CategoryBadge:        0xfbbf24,
}

var categoryEmojis = map[Category]string{
	CategoryWhale:        "\U0001F40B",
	CategoryContract:     "\U0001F4DC",
	CategoryNFT:          "\U0001F3A8",
	CategoryToken:        "\U0001F680",
	CategorySwap:         "\U0001F4B1",
	CategorySubscription: "⭐",
	CategoryAlert:        "\U0001F514",
	CategoryFee:          "\U0001F4B0",
	CategoryBadge:        "\U0001F3C6",
}

// Color returns the embed accent color for a category.
func (c Category) Color() int {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return defaultColor
}

// Emoji returns the display emoji for a category.
func (c Category) Emoji() string {
	if emoji, ok := categoryEmojis[c]; ok {
		return emoji
	}
	return defaultEmoji
}

// ExplorerTxURL builds a transaction explorer link.
func ExplorerTxURL(baseURL, txHash string) string {
	return baseURL + "/txid/" + txHash + "?chain=mainnet"
}
