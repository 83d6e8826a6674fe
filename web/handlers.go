package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tfkr-ae/raseed"
	"github.com/tfkr-ae/raseed/domain"
	"github.com/tfkr-ae/raseed/render"
)

const maxBodyBytes = 1 << 20

func (s *Server) today() time.Time {
	return s.app.Clock().UTC()
}

func (s *Server) renderPage(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := s.pages.Render(&buf, page, data); err != nil {
		s.logger.Error("rendering page", "page", page, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) renderForm(w http.ResponseWriter, status int, form *FormState) {
	s.renderPage(w, status, render.PageForm, form.Page(s.today()))
}

// serverError renders the error page for failures the user cannot fix from the form.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("handling request", "path", r.URL.Path, "err", err)
	page := render.MessagePage{
		Title:   "Something Went Wrong",
		Message: "The receipt could not be processed. Please try again.",
	}
	if raseed.IsCorrupted(err) {
		page.Title = "Stored Receipts Unreadable"
		page.Message = "The stored receipts could not be read. Run \"raseed reset --force\" to start a new collection."
	}
	s.renderPage(w, http.StatusInternalServerError, render.PageError, page)
}

func (s *Server) notFound(w http.ResponseWriter) {
	s.renderPage(w, http.StatusNotFound, render.PageNotFound, render.MessagePage{
		Title:   "Receipt Not Found",
		Message: "The receipt you are looking for does not exist.",
	})
}

// validate applies the model rules and the form-only future date rule.
func (s *Server) validate(raw domain.RawReceiptForm) (domain.ReceiptFormData, error) {
	data, err := domain.Validate(raw)
	if err == nil {
		if errs := CheckNotFuture(data, s.app.Clock()); len(errs) > 0 {
			err = errs
		}
	}
	if err != nil {
		s.app.RejectSubmission(err)
		return domain.ReceiptFormData{}, err
	}
	return data, nil
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, http.StatusOK, NewFormState(s.today()))
}

func (s *Server) handleFormPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	raw := domain.ParseForm(r.PostForm)
	form := FormStateFrom(raw, s.today())
	action := r.PostFormValue("action")

	if action == "add" {
		form.AddRow(s.today())
		s.renderForm(w, http.StatusOK, form)
		return
	}
	if i, ok := parseRemoveAction(action); ok {
		form.RemoveRow(i)
		s.renderForm(w, http.StatusOK, form)
		return
	}

	data, err := s.validate(raw)
	if err != nil {
		var verrs domain.ValidationErrors
		if !errors.As(err, &verrs) {
			s.serverError(w, r, err)
			return
		}
		form.Errors = verrs
		s.renderForm(w, http.StatusUnprocessableEntity, form)
		return
	}

	receipt, err := s.app.Record(r.Context(), data)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/receipt/"+receipt.ID.String(), http.StatusSeeOther)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, found, err := s.app.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w)
		return
	}

	page, err := render.NewReceiptPage(receipt, s.app.Clock(), r.URL.Query().Get("skin"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.renderPage(w, http.StatusOK, render.PageReceipt, page)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format, err := raseed.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, found, err := s.app.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w)
		return
	}

	artifact, err := s.app.Export(r.Context(), receipt, format)
	if err != nil {
		// Export already logged the failure.
		http.Error(w, "failed to export receipt", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

type apiError struct {
	Error  string                  `json:"error,omitempty"`
	Errors domain.ValidationErrors `json:"errors,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encoding response", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func (s *Server) apiServerError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("handling request", "path", r.URL.Path, "err", err)
	msg := "internal error"
	if raseed.IsCorrupted(err) {
		msg = "stored receipts are corrupted"
	}
	s.writeJSON(w, http.StatusInternalServerError, apiError{Error: msg})
}

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.app.Receipts(r.Context())
	if err != nil {
		s.apiServerError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, receipts)
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	receipt, found, err := s.app.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		s.apiServerError(w, r, err)
		return
	}
	if !found {
		s.writeJSON(w, http.StatusNotFound, apiError{Error: "receipt not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawReceiptForm
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}

	data, err := s.validate(raw)
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			s.writeJSON(w, http.StatusUnprocessableEntity, apiError{Errors: verrs})
			return
		}
		s.apiServerError(w, r, err)
		return
	}

	receipt, err := s.app.Record(r.Context(), data)
	if err != nil {
		s.apiServerError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/receipts/"+receipt.ID.String())
	s.writeJSON(w, http.StatusCreated, receipt)
}
