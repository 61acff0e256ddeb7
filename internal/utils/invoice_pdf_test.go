package utils

import (
	"strings"
	"testing"
)

func TestGenerateSepaQR(t *testing.T) {
	qr, err := GenerateSepaQR("BE12345678901234", "KREDBEBB", "TecShop SRL", "FACT-42", 99.90)
	if err != nil {
		t.Fatalf("GenerateSepaQR: %v", err)
	}

	if !strings.HasPrefix(qr, "data:image/png;base64,") {
		t.Errorf("le QR doit être une data-URL PNG, obtenu: %.40s", qr)
	}
}

func TestGetFrontendInvoiceBaseURL(t *testing.T) {
	t.Setenv("FRONTEND_INVOICE_URL", "")
	if got := GetFrontendInvoiceBaseURL(); got != "http://localhost:3000/invoice" {
		t.Errorf("fallback attendu, obtenu %q", got)
	}

	t.Setenv("FRONTEND_INVOICE_URL", "https://tecshop.io/invoice")
	if got := GetFrontendInvoiceBaseURL(); got != "https://tecshop.io/invoice" {
		t.Errorf("valeur env attendue, obtenu %q", got)
	}
}
