package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"tecshop_backend/internal/models"

	"github.com/wneessen/go-mail"
)

func SendConfirmationEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From("noreply@tecshop.io"); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_tecshop.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendOrderStatusEmail envoie un email de notification de changement de statut
func SendOrderStatusEmail(order models.Order, userEmail string, newStatus string) error {
	subject := getStatusEmailSubject(newStatus)
	html := generateStatusEmailHTML(order, newStatus)

	err := SendConfirmationEmail(userEmail, subject, html, nil)
	if err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}

	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, userEmail)
	return nil
}

func getStatusEmailSubject(status string) string {
	switch status {
	case "paid":
		return "✅ Paiement confirmé - TecShop"
	case "shipped":
		return "📦 Votre commande a été expédiée - TecShop"
	case "delivered":
		return "🎉 Votre commande a été livrée - TecShop"
	case "cancelled":
		return "❌ Commande annulée - TecShop"
	case "refunded":
		return "💰 Remboursement effectué - TecShop"
	default:
		return "📋 Mise à jour de votre commande - TecShop"
	}
}

func getStatusMessage(status string) string {
	switch status {
	case "paid":
		return "Nous avons bien reçu votre paiement. Votre commande est en cours de préparation."
	case "shipped":
		return "Bonne nouvelle ! Votre commande est en route."
	case "delivered":
		return "Votre commande a été livrée. Merci pour votre confiance !"
	case "cancelled":
		return "Votre commande a été annulée. Si vous n'êtes pas à l'origine de cette annulation, contactez-nous."
	case "refunded":
		return "Le remboursement de votre commande a été effectué. Il apparaîtra sous quelques jours sur votre compte."
	default:
		return "Le statut de votre commande a été mis à jour."
	}
}

func generateStatusEmailHTML(order models.Order, status string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Mise à jour de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Mise à jour de votre commande</h2>
		<p>%s</p>
		<p><strong>Numéro de commande :</strong> #%s</p>
		<p><strong>Montant total :</strong> %.2f€</p>
		<p><strong>Statut :</strong> %s</p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe TecShop</strong>
		</p>
	</div>
</body>
</html>`, getStatusMessage(status), order.ID.String(), order.TotalPrice, status)
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, item.ProductName, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour,</p>
		<p>Votre commande a été confirmée avec succès.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe TecShop</strong>
		</p>
	</div>
</body>
</html>`, itemsHTML, order.TotalPrice)
}

// GenerateInvoicePDF génère un PDF de facture (rendu via la page facture du storefront)
func GenerateInvoicePDF(order models.Order) ([]byte, error) {
	orderID := order.ID.String()
	frontURL := GetFrontendInvoiceBaseURL()

	// Générer le QR SEPA
	iban := os.Getenv("COMPANY_IBAN")
	if iban == "" {
		iban = "BE12345678901234"
	}
	bic := os.Getenv("COMPANY_BIC")
	if bic == "" {
		bic = "KREDBEBB"
	}
	companyName := os.Getenv("COMPANY_NAME")
	if companyName == "" {
		companyName = "TecShop SRL"
	}
	ref := fmt.Sprintf("FACT-%s", orderID)

	qrBase64, err := GenerateSepaQR(iban, bic, companyName, ref, order.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("erreur génération QR: %v", err)
	}

	return RenderInvoicePDF(frontURL, orderID, qrBase64)
}
