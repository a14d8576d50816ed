package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/rewards"
	tg "github.com/set-night/cafeloyalty/internal/telegram"
)

const dateLayout = "02.01.2006 15:04"

const clientHelp = "📋 *Commands:*\n" +
	"/shops · Browse coffee shops\n" +
	"/rewards · Your points and offers\n" +
	"/history · Redeemed offers and codes\n" +
	"/review <1-5> <text> · Review your shop\n" +
	"/email <address> · Set your contact email\n\n" +
	"📍 Share your location to get a route to your shop."

const adminHelp = "\n\n🛠 *Admin:*\n" +
	"/myshops · Your shops\n" +
	"/addshop name | address | lat | lon | picture url\n" +
	"/addoffer shop# | name | description | points\n" +
	"/offers · Manage offers\n" +
	"/client <email|@username> · Look up a client\n" +
	"/award <email|@username> <points> · Credit points\n" +
	"/reviews · Reviews of your shops"

func formatWelcome(a *domain.Account, created bool) string {
	var sb strings.Builder
	if created {
		fmt.Fprintf(&sb, "👋 Welcome, *%s*!\n\n", tg.EscapeMarkdown(a.DisplayName()))
		sb.WriteString("Collect points at your favourite coffee shop and swap them for treats.\n\n")
	} else {
		fmt.Fprintf(&sb, "👋 Hi again, *%s*! You have *%d* pts.\n\n", tg.EscapeMarkdown(a.DisplayName()), a.Points)
	}
	sb.WriteString(clientHelp)
	if a.IsAdmin() {
		sb.WriteString(adminHelp)
	}
	return sb.String()
}

func preferredShopID(a *domain.Account) *uuid.UUID {
	if a == nil {
		return nil
	}
	return a.PreferredShopID
}

func formatRating(r domain.Rating, ok bool) string {
	if !ok || r.Count == 0 {
		return "no reviews yet"
	}
	return fmt.Sprintf("⭐ %s (%d)", r.Average.StringFixed(1), r.Count)
}

// shopPage renders one page of the shop directory with a preference
// button per shop.
func shopPage(shops []domain.Shop, ratings map[uuid.UUID]domain.Rating, preferred *uuid.UUID, page int) (string, *models.InlineKeyboardMarkup) {
	if len(shops) == 0 {
		return "☕ No coffee shops yet.", nil
	}

	totalPages := (len(shops) + config.ShopsPerPage - 1) / config.ShopsPerPage
	page = max(0, min(page, totalPages-1))
	from := page * config.ShopsPerPage
	to := min(from+config.ShopsPerPage, len(shops))

	var sb strings.Builder
	fmt.Fprintf(&sb, "☕ *Coffee shops* (%d)\n", len(shops))

	var rows [][]models.InlineKeyboardButton
	for _, s := range shops[from:to] {
		r, ok := ratings[s.ID]
		mark := ""
		if preferred != nil && *preferred == s.ID {
			mark = " ✅"
		}
		fmt.Fprintf(&sb, "\n*%s*%s\n📍 %s\n%s\n", tg.EscapeMarkdown(s.Name), mark, tg.EscapeMarkdown(s.Address), formatRating(r, ok))

		label := "Set as preferred: " + s.Name
		if mark != "" {
			label = "✅ " + s.Name
		}
		rows = append(rows, tg.ButtonRow(tg.InlineButton(label, callbackPrefer+s.ID.String())))
	}
	if totalPages > 1 {
		rows = append(rows, tg.PaginationRow(page, totalPages, callbackShopsPage))
	}
	return sb.String(), tg.InlineKeyboard(rows...)
}

// rewardsCard renders the balance and the display state of each offer.
func rewardsCard(a *domain.Account, shop domain.Shop, views []rewards.OfferView) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "💳 *%d* pts\n☕ %s\n", a.Points, tg.EscapeMarkdown(shop.Name))

	if len(views) == 0 {
		sb.WriteString("\nThis shop has no offers yet.")
		return sb.String(), nil
	}

	var rows [][]models.InlineKeyboardButton
	for _, v := range views {
		fmt.Fprintf(&sb, "\n🎁 *%s* · %d pts\n", tg.EscapeMarkdown(v.Offer.Name), v.Offer.PointsCost)
		if v.Offer.Description != "" {
			fmt.Fprintf(&sb, "%s\n", tg.EscapeMarkdown(v.Offer.Description))
		}
		fmt.Fprintf(&sb, "%s %d%%\n%s\n",
			tg.ProgressBar(v.ProgressPercent, config.ProgressBarCells), v.ProgressPercent, v.StatusText)

		if v.Actionable {
			rows = append(rows, tg.ButtonRow(tg.InlineButton("Redeem: "+v.Offer.Name, callbackRedeem+v.Offer.ID.String())))
		}
	}
	if len(rows) == 0 {
		return sb.String(), nil
	}
	return sb.String(), tg.InlineKeyboard(rows...)
}

func rejectionText(r rewards.EligibilityResult) string {
	switch r.Status {
	case rewards.StatusAlreadyRedeemed:
		return "Offer already redeemed"
	case rewards.StatusInsufficientPoints:
		return fmt.Sprintf("%d points needed to unlock", r.Shortfall)
	default:
		return r.String()
	}
}

func formatRedeemed(a *domain.Account, r domain.Redemption, balance int64) string {
	return fmt.Sprintf("✅ *%s* redeemed!\n\nShow this code to the barista:\n`%s`\n\nBalance: *%d* pts",
		tg.EscapeMarkdown(r.Name), r.Code(a.ID), balance)
}

func formatHistory(a *domain.Account, txs []domain.Transaction) string {
	var sb strings.Builder
	sb.WriteString("📜 *Redeemed offers*\n")
	if len(a.RedemptionHistory) == 0 {
		sb.WriteString("\nNothing redeemed yet.\n")
	}
	for i := len(a.RedemptionHistory) - 1; i >= 0; i-- {
		r := a.RedemptionHistory[i]
		fmt.Fprintf(&sb, "\n🎁 *%s* · %d pts\n%s\n`%s`\n",
			tg.EscapeMarkdown(r.Name), r.PointsCost, r.RedeemedAt.Format(dateLayout), r.Code(a.ID))
	}

	if len(txs) > 0 {
		sb.WriteString("\n🧾 *Recent activity*\n")
		for _, t := range txs {
			fmt.Fprintf(&sb, "%s  %+d  %s\n", t.CreatedAt.Format(dateLayout), t.Amount, tg.EscapeMarkdown(t.Description))
		}
	}
	return sb.String()
}

func formatShopLine(i int, s domain.Shop) string {
	return fmt.Sprintf("%d. *%s*\n📍 %s (%s, %s)\n",
		i, tg.EscapeMarkdown(s.Name), tg.EscapeMarkdown(s.Address), s.Latitude.String(), s.Longitude.String())
}

func formatOwnedShops(shops []domain.Shop) string {
	if len(shops) == 0 {
		return "You have no shops yet. Add one with /addshop."
	}
	var sb strings.Builder
	sb.WriteString("🏪 *Your shops*\n\n")
	for i, s := range shops {
		sb.WriteString(formatShopLine(i+1, s))
	}
	sb.WriteString("\nUse the number with /addoffer.")
	return sb.String()
}

func formatOwnedOffers(offers []domain.Offer, shopNames map[uuid.UUID]string) (string, *models.InlineKeyboardMarkup) {
	if len(offers) == 0 {
		return "No offers yet. Add one with /addoffer.", nil
	}
	var sb strings.Builder
	sb.WriteString("🎁 *Your offers*\n")
	var rows [][]models.InlineKeyboardButton
	for _, o := range offers {
		fmt.Fprintf(&sb, "\n*%s* · %d pts\n☕ %s\n", tg.EscapeMarkdown(o.Name), o.PointsCost, tg.EscapeMarkdown(shopNames[o.ShopID]))
		rows = append(rows, tg.ButtonRow(tg.InlineButton("🗑 Delete: "+o.Name, callbackDeleteOffer+o.ID.String())))
	}
	return sb.String(), tg.InlineKeyboard(rows...)
}

func formatClient(a *domain.Account, shopName string) string {
	email := a.Email
	if email == "" {
		email = "not set"
	}
	if shopName == "" {
		shopName = "not set"
	}
	username := ""
	if a.Username != "" {
		username = " (@" + tg.EscapeMarkdown(a.Username) + ")"
	}
	return fmt.Sprintf("👤 *%s*%s\n📧 %s\n☕ %s\n💳 *%d* pts\n🎁 %d redeemed",
		tg.EscapeMarkdown(a.DisplayName()), username, tg.EscapeMarkdown(email), tg.EscapeMarkdown(shopName),
		a.Points, len(a.RedemptionHistory))
}

func formatReviews(reviews []domain.Review, shopNames map[uuid.UUID]string) string {
	if len(reviews) == 0 {
		return "No reviews for your shops yet."
	}
	var sb strings.Builder
	sb.WriteString("💬 *Reviews*\n")
	for _, r := range reviews {
		fmt.Fprintf(&sb, "\n☕ *%s* %s\n%s · %s\n%s\n",
			tg.EscapeMarkdown(shopNames[r.ShopID]), strings.Repeat("⭐", r.Rating),
			tg.EscapeMarkdown(r.UserEmail), r.CreatedAt.Format(dateLayout), tg.EscapeMarkdown(r.Text))
	}
	return sb.String()
}

func formatRoute(shop domain.Shop, route domain.Route) string {
	d := time.Duration(route.DurationSeconds * float64(time.Second)).Round(time.Minute)
	minutes := int(d.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("🗺 Route to *%s*\n📍 %s\n\n📏 %.1f km\n⏱ ~%d min",
		tg.EscapeMarkdown(shop.Name), tg.EscapeMarkdown(shop.Address), route.DistanceMeters/1000, minutes)
}

// directionsURL opens the same route on openstreetmap.org.
func directionsURL(from, to domain.Coordinate) string {
	return fmt.Sprintf("https://www.openstreetmap.org/directions?engine=fossgis_osrm_car&route=%s%%2C%s%%3B%s%%2C%s",
		from.Latitude.String(), from.Longitude.String(), to.Latitude.String(), to.Longitude.String())
}
