// Package respond define el sobre JSON común de todas las respuestas del
// servicio y los helpers para leer y escribir bodies.
package respond

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Iconos que acompañan cada respuesta.
const (
	IconSuccess = "success"
	IconError   = "error"
	IconWarning = "warning"
)

// Envelope es el sobre de toda respuesta: éxito o falla.
type Envelope struct {
	Estado  bool   `json:"estado"`
	Icono   string `json:"icono"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON: respuesta JSON estándar
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success escribe un sobre exitoso con icono success.
func Success(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Estado: true, Icono: IconSuccess, Message: message, Data: data})
}

// Fail escribe un sobre de falla con el icono dado.
func Fail(w http.ResponseWriter, status int, icono, message string) {
	WriteJSON(w, status, Envelope{Estado: false, Icono: icono, Message: message})
}

// ReadJSON decodifica el body en v. Valida Content-Type y limita el tamaño
// del body a 1MB. No falla por campos desconocidos. Ante un body inválido
// escribe el 400 y devuelve false.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		Fail(w, http.StatusBadRequest, IconError, "Content-Type debe ser application/json")
		return false
	}
	// máx 1MB
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		Fail(w, http.StatusBadRequest, IconError, "json inválido")
		return false
	}
	return true
}
