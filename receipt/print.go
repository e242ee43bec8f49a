package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/orders"
	"tillpoint/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

// PrintReceipt renders the order as a PDF receipt with a signed QR code
// in the corner. Works for completed and refunded orders; refunds print
// with a REFUNDED banner.
func PrintReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	order, err := orders.GetByID(ctx, ps.ByName("orderid"))
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if order.Status == "awaiting_payment" {
		http.Error(w, "Order has not settled yet", http.StatusConflict)
		return
	}

	var location models.Location
	if err := db.LocationsCollection.FindOne(ctx, bson.M{"locationid": order.LocationID}).Decode(&location); err != nil {
		location.Name = order.LocationID
	}

	qrPNG, err := qrcode.Encode(GenerateQRPayload(order.OrderID, order.OrderNumber), qrcode.Medium, 256)
	if err != nil {
		log.Println("PrintReceipt QR error:", err)
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, location.Name)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	if location.Address != "" {
		pdf.Cell(0, 6, location.Address)
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Order %s", order.OrderNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, order.CreatedAt.Format("Jan 2 2006 15:04"))
	pdf.Ln(10)

	if order.Status == "refunded" {
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 8, "*** REFUNDED ***")
		pdf.Ln(10)
	}

	pdf.SetFont("Arial", "", 11)
	for _, line := range order.Lines {
		name := line.Name
		if line.Tier != "" {
			name += " (" + line.Tier + ")"
		}
		pdf.Cell(110, 6, fmt.Sprintf("%d x %s", line.Quantity, name))
		pdf.CellFormat(40, 6, utils.CentsString(line.LineTotal), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
	pdf.Ln(4)

	printTotal := func(label string, cents int64, bold bool) {
		if bold {
			pdf.SetFont("Arial", "B", 11)
		} else {
			pdf.SetFont("Arial", "", 11)
		}
		pdf.Cell(110, 6, label)
		pdf.CellFormat(40, 6, utils.CentsString(cents), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	printTotal("Subtotal", order.Subtotal, false)
	if order.LoyaltyDiscount > 0 {
		printTotal(fmt.Sprintf("Loyalty (%d pts)", order.PointsRedeemed), -order.LoyaltyDiscount, false)
	}
	if order.PromoDiscount > 0 {
		printTotal("Promo "+order.PromoCode, -order.PromoDiscount, false)
	}
	printTotal("Tax", order.Tax, false)
	printTotal("Total", order.Total, true)
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	for _, p := range order.Payments {
		if p.Status != "captured" {
			continue
		}
		switch p.Method {
		case "cash":
			printTotal("Cash", p.Tendered, false)
			if p.Change > 0 {
				printTotal("Change", -p.Change, false)
			}
		case "card":
			label := "Card"
			if p.CardBrand != "" {
				label = p.CardBrand + " *" + p.CardLast4
			}
			printTotal(label, p.Amount, false)
		}
	}

	if order.CustomerID != "" {
		pdf.Ln(4)
		pdf.Cell(0, 6, fmt.Sprintf("Points earned: %d", order.PointsEarned))
		pdf.Ln(6)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 155, 20, 35, 35, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		log.Println("PrintReceipt PDF error:", err)
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.OrderNumber+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// VerifyReceipt checks a scanned QR payload and, when the signature
// holds, returns the order it names.
func VerifyReceipt(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var body struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	orderID, ok := VerifyQRPayload(body.Payload)
	if !ok {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"valid": false})
		return
	}

	order, err := orders.GetByID(ctx, orderID)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"valid": false})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"valid": true, "order": order})
}
