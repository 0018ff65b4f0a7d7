package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"cardvault-rest-api/internal/middleware"
	"cardvault-rest-api/internal/service"
	"cardvault-rest-api/pkg/apierror"
	"cardvault-rest-api/pkg/response"
)

// xlsxContentType is the MIME type for .xlsx workbooks.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxImportSize caps uploaded workbooks at 20 MB.
const maxImportSize = 20 << 20

// TransferHandler handles bulk import and export HTTP requests.
type TransferHandler struct {
	transfer   *service.TransferService
	collection *service.CollectionService
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(transfer *service.TransferService, collection *service.CollectionService) *TransferHandler {
	return &TransferHandler{transfer: transfer, collection: collection}
}

// Import handles POST /api/v1/items/import. The workbook is uploaded as
// the "file" part of a multipart form. Per-row failures land in the
// result's error list; only a malformed workbook fails the request.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		response.Error(w, apierror.BadRequest("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, apierror.BadRequest("file field is required"))
		return
	}
	defer file.Close()

	result, err := h.transfer.Import(r.Context(), accountID, file)
	if err != nil {
		log.Printf("[TransferHandler] import of %q failed: %v", header.Filename, err)
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	response.OK(w, map[string]interface{}{
		"outcome": result.Outcome(),
		"result":  result,
	})
}

// Export handles GET /api/v1/items/export. The workbook holds the
// account's current filtered and sorted view in full, never a single
// page.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	v := h.collection.LoadViewState(r.Context(), accountID)
	items, err := h.collection.FilteredItems(r.Context(), accountID, v)
	if err != nil {
		response.Error(w, err)
		return
	}

	f, err := service.BuildWorkbook(items)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to build workbook"))
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		response.Error(w, apierror.InternalError("failed to serialize workbook"))
		return
	}

	filename := fmt.Sprintf("collection-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	response.Blob(w, xlsxContentType, filename, buf.Bytes())
}
