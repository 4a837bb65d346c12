package stub

import (
	"database/sql"
	"net/http"

	"github.com/zanvidmar/evidenca/internal/model"
)

// NewRouter creates the stub backend router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	devicesHandler := &DevicesHandler{DB: db}
	orgHandler := &OrgHandler{DB: db}
	assignmentsHandler := &AssignmentsHandler{DB: db}

	authMW := authMiddleware(jwtSecret)
	requireSuperAdmin := requireRole(model.RoleSuperAdmin)
	requireITStaff := requireRole(model.RoleITStaff)

	// Public: login and refresh.
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/refresh", authHandler.Refresh)

	// Authenticated auth routes.
	mux.Handle("POST /auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /auth/profile", authMW(http.HandlerFunc(authHandler.Profile)))

	// Devices: read (all roles), write (IT staff+).
	mux.Handle("GET /devices", authMW(http.HandlerFunc(devicesHandler.List)))
	mux.Handle("GET /devices/{id}", authMW(http.HandlerFunc(devicesHandler.Get)))
	mux.Handle("POST /devices", authMW(requireITStaff(http.HandlerFunc(devicesHandler.Create))))
	mux.Handle("PUT /devices/{id}", authMW(requireITStaff(http.HandlerFunc(devicesHandler.Update))))
	mux.Handle("DELETE /devices/{id}", authMW(requireITStaff(http.HandlerFunc(devicesHandler.Delete))))
	mux.Handle("PUT /devices/{id}/photo", authMW(requireITStaff(http.HandlerFunc(devicesHandler.UploadPhoto))))
	mux.Handle("GET /devices/{id}/photo", authMW(http.HandlerFunc(devicesHandler.GetPhoto)))

	// Departments and locations: read (all roles), write (super admin).
	mux.Handle("GET /departments", authMW(http.HandlerFunc(orgHandler.ListDepartments)))
	mux.Handle("POST /departments", authMW(requireSuperAdmin(http.HandlerFunc(orgHandler.CreateDepartment))))
	mux.Handle("DELETE /departments/{id}", authMW(requireSuperAdmin(http.HandlerFunc(orgHandler.DeleteDepartment))))
	mux.Handle("GET /locations", authMW(http.HandlerFunc(orgHandler.ListLocations)))
	mux.Handle("POST /locations", authMW(requireSuperAdmin(http.HandlerFunc(orgHandler.CreateLocation))))
	mux.Handle("DELETE /locations/{id}", authMW(requireSuperAdmin(http.HandlerFunc(orgHandler.DeleteLocation))))

	// User accounts (super admin only).
	mux.Handle("GET /users", authMW(requireSuperAdmin(http.HandlerFunc(orgHandler.ListUsers))))
	mux.Handle("POST /users", authMW(requireSuperAdmin(http.HandlerFunc(orgHandler.CreateUser))))
	mux.Handle("PUT /users/{id}/active", authMW(requireSuperAdmin(http.HandlerFunc(orgHandler.SetUserActive))))

	// Assignments: create and read (all roles), workflow transitions (IT staff+).
	mux.Handle("GET /assignments", authMW(http.HandlerFunc(assignmentsHandler.List)))
	mux.Handle("POST /assignments", authMW(http.HandlerFunc(assignmentsHandler.Create)))
	mux.Handle("PUT /assignments/{id}/status", authMW(requireITStaff(http.HandlerFunc(assignmentsHandler.SetStatus))))

	return mux
}
