// Package password encapsula el hashing de credenciales.
//
// Usa bcrypt con salt por hash y costo configurable. Verify nunca retorna
// error: un password que no coincide es simplemente false.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost es el costo bcrypt por defecto (2^10 iteraciones).
const DefaultCost = bcrypt.DefaultCost

// Hash genera un hash bcrypt del password en texto plano.
// El salt va embebido en el hash resultante.
func Hash(plain string) (string, error) {
	return HashWithCost(plain, DefaultCost)
}

// HashWithCost genera un hash bcrypt con un costo específico.
// Útil en tests para bajar el costo y acelerar la suite.
func HashWithCost(plain string, cost int) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara un password en texto plano contra un hash bcrypt.
// La comparación interna de bcrypt es en tiempo constante.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
