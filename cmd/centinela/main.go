// CLI de administración que habla con la API HTTP del servicio.
//
//	centinela login --email admin@example.com --password ...
//	centinela users list | create | assign-roles
//	centinela roles list | create
//	centinela permissions list | create | assign
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func (c *client) call(method, path string, payload any) error {
	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}
	status, out, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return fmt.Errorf("%s %s fallo: status=%d body=%s", method, path, status, string(out))
	}
	c.print(status, out)
	return nil
}

func main() {
	var (
		baseURL = envOr("CENTINELA_URL", "http://localhost:8080")
		token   = envOr("CENTINELA_TOKEN", "")
		out     = envOr("CENTINELA_OUT", "text")
	)

	cl := &client{BaseURL: baseURL, Token: token, OutFormat: out, HTTP: &http.Client{Timeout: 30 * time.Second}}

	root := &cobra.Command{
		Use:   "centinela",
		Short: "CLI admin para el servicio de identidad",
	}
	root.PersistentFlags().StringVar(&cl.BaseURL, "url", baseURL, "URL base del servicio (env CENTINELA_URL)")
	root.PersistentFlags().StringVar(&cl.Token, "token", token, "Access token (env CENTINELA_TOKEN)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", out, "Formato de salida: json|text")

	// login
	var loginEmail, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Obtener un par de tokens con email y password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if loginEmail == "" || loginPassword == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			return cl.call("POST", "/users/login", map[string]string{
				"email": loginEmail, "password": loginPassword,
			})
		},
	}
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email del usuario")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password del usuario")

	// users
	usersCmd := &cobra.Command{Use: "users", Short: "Operaciones sobre usuarios"}

	usersListCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar usuarios con roles y permisos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call("GET", "/users/all", nil)
		},
	}

	var newUserEmail, newUserPassword string
	usersCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Crear un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			if newUserEmail == "" || newUserPassword == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			return cl.call("POST", "/users", map[string]string{
				"email": newUserEmail, "password": newUserPassword,
			})
		},
	}
	usersCreateCmd.Flags().StringVar(&newUserEmail, "email", "", "Email del usuario")
	usersCreateCmd.Flags().StringVar(&newUserPassword, "password", "", "Password del usuario")

	var assignUserID int64
	var assignRoleIDs []int64
	usersAssignCmd := &cobra.Command{
		Use:   "assign-roles",
		Short: "Reemplazar los roles de un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			if assignUserID <= 0 {
				return fmt.Errorf("--user-id es requerido")
			}
			return cl.call("POST", "/roles/users", map[string]any{
				"user_id": assignUserID, "roles_id": assignRoleIDs,
			})
		},
	}
	usersAssignCmd.Flags().Int64Var(&assignUserID, "user-id", 0, "ID del usuario")
	usersAssignCmd.Flags().Int64SliceVar(&assignRoleIDs, "roles", nil, "IDs de roles (ej. --roles 1,2)")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersAssignCmd)

	// roles
	rolesCmd := &cobra.Command{Use: "roles", Short: "Operaciones sobre roles"}

	rolesListCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar roles con permisos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call("GET", "/roles", nil)
		},
	}

	var newRoleName, newRoleDesc string
	rolesCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Crear un rol",
		RunE: func(cmd *cobra.Command, args []string) error {
			if newRoleName == "" {
				return fmt.Errorf("--name es requerido")
			}
			return cl.call("POST", "/roles", map[string]string{
				"name": newRoleName, "description": newRoleDesc,
			})
		},
	}
	rolesCreateCmd.Flags().StringVar(&newRoleName, "name", "", "Nombre del rol")
	rolesCreateCmd.Flags().StringVar(&newRoleDesc, "description", "", "Descripción del rol")

	rolesCmd.AddCommand(rolesListCmd, rolesCreateCmd)

	// permissions
	permsCmd := &cobra.Command{Use: "permissions", Short: "Operaciones sobre permisos"}

	permsListCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar permisos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call("GET", "/permissions", nil)
		},
	}

	var newPermName, newPermDesc string
	permsCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Crear un permiso",
		RunE: func(cmd *cobra.Command, args []string) error {
			if newPermName == "" {
				return fmt.Errorf("--name es requerido")
			}
			return cl.call("POST", "/permissions", map[string]string{
				"name": newPermName, "description": newPermDesc,
			})
		},
	}
	permsCreateCmd.Flags().StringVar(&newPermName, "name", "", "Nombre del permiso")
	permsCreateCmd.Flags().StringVar(&newPermDesc, "description", "", "Descripción del permiso")

	var permRoleID int64
	var permIDs []int64
	permsAssignCmd := &cobra.Command{
		Use:   "assign",
		Short: "Reemplazar los permisos de un rol",
		RunE: func(cmd *cobra.Command, args []string) error {
			if permRoleID <= 0 {
				return fmt.Errorf("--role-id es requerido")
			}
			return cl.call("POST", "/roles/permissions", map[string]any{
				"role_id": permRoleID, "permissions_id": permIDs,
			})
		},
	}
	permsAssignCmd.Flags().Int64Var(&permRoleID, "role-id", 0, "ID del rol")
	permsAssignCmd.Flags().Int64SliceVar(&permIDs, "permissions", nil, "IDs de permisos (ej. --permissions 1,2)")

	permsCmd.AddCommand(permsListCmd, permsCreateCmd, permsAssignCmd)

	root.AddCommand(loginCmd, usersCmd, rolesCmd, permsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
