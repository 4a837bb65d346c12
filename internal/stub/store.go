package stub

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/zanvidmar/evidenca/internal/model"
)

// createUser inserts a user account.
func createUser(ctx context.Context, db *sql.DB, name, email, passwordHash, role, departmentID string) (*model.User, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, department_id) VALUES (?, ?, ?, ?, ?, NULLIF(?, ''))`,
		id, name, email, passwordHash, role, departmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return getUser(ctx, db, id)
}

// getUser returns a user by ID, or nil when absent.
func getUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u := &model.User{}
	var departmentID sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, role, department_id, is_active, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &departmentID, &u.IsActive, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.DepartmentID = departmentID.String
	return u, nil
}

// getUserByEmail returns a user and password hash by email.
func getUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, string, error) {
	u := &model.User{}
	var departmentID sql.NullString
	var hash string
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, department_id, is_active, created_at
		 FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Role, &departmentID, &u.IsActive, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting user by email: %w", err)
	}
	u.DepartmentID = departmentID.String
	return u, hash, nil
}

// listUsers returns all accounts.
func listUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, email, role, department_id, is_active, created_at
		 FROM users ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var departmentID sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &departmentID, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.DepartmentID = departmentID.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// setUserActive toggles an account.
func setUserActive(ctx context.Context, db *sql.DB, id string, active bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE id = ?`, active, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanDevice(scan func(...any) error) (*model.Device, error) {
	d := &model.Device{}
	var departmentID, locationID, serial, photoMime sql.NullString
	err := scan(&d.ID, &d.AssetTag, &d.Name, &d.Category, &d.Quantity, &d.Status,
		&departmentID, &locationID, &serial, &photoMime, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.DepartmentID = departmentID.String
	d.LocationID = locationID.String
	d.SerialNumber = serial.String
	d.PhotoMime = photoMime.String
	return d, nil
}

const deviceColumns = `id, asset_tag, name, category, quantity, status,
	department_id, location_id, serial_number, photo_mime, created_at, updated_at`

// createDevice inserts a device.
func createDevice(ctx context.Context, db *sql.DB, d model.Device) (*model.Device, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = model.DeviceStatusInStock
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO devices (id, asset_tag, name, category, quantity, status, department_id, location_id, serial_number)
		 VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''))`,
		d.ID, d.AssetTag, d.Name, d.Category, d.Quantity, d.Status,
		d.DepartmentID, d.LocationID, d.SerialNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}
	return getDevice(ctx, db, d.ID)
}

// getDevice returns a device by ID, or nil when absent.
func getDevice(ctx context.Context, db *sql.DB, id string) (*model.Device, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)
	device, err := scanDevice(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting device: %w", err)
	}
	return device, nil
}

// listDevices returns all devices, optionally filtered by status.
func listDevices(ctx context.Context, db *sql.DB, status string) ([]model.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY asset_tag`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var devices []model.Device
	for rows.Next() {
		device, err := scanDevice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *device)
	}
	return devices, rows.Err()
}

// updateDevice replaces a device's mutable fields.
func updateDevice(ctx context.Context, db *sql.DB, d model.Device) (*model.Device, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE devices SET name = ?, category = ?, quantity = ?, status = ?,
		        department_id = NULLIF(?, ''), location_id = NULLIF(?, ''),
		        serial_number = NULLIF(?, ''), updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		d.Name, d.Category, d.Quantity, d.Status, d.DepartmentID, d.LocationID,
		d.SerialNumber, d.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating device: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}
	return getDevice(ctx, db, d.ID)
}

// deleteDevice removes a device.
func deleteDevice(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// setDevicePhoto stores a processed photo.
func setDevicePhoto(ctx context.Context, db *sql.DB, id string, photo []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE devices SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("storing photo: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// getDevicePhoto returns a device's photo bytes and MIME type.
func getDevicePhoto(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM devices WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err != nil {
		return nil, "", err
	}
	return photo, mime.String, nil
}

// createDepartment inserts a department.
func createDepartment(ctx context.Context, db *sql.DB, d model.Department) (*model.Department, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO departments (id, name, in_charge_id) VALUES (?, ?, NULLIF(?, ''))`,
		d.ID, d.Name, d.InChargeID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating department: %w", err)
	}

	var inCharge sql.NullString
	created := &model.Department{}
	err = db.QueryRowContext(ctx,
		`SELECT id, name, in_charge_id, created_at FROM departments WHERE id = ?`, d.ID,
	).Scan(&created.ID, &created.Name, &inCharge, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting department: %w", err)
	}
	created.InChargeID = inCharge.String
	return created, nil
}

// listDepartments returns all departments.
func listDepartments(ctx context.Context, db *sql.DB) ([]model.Department, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, in_charge_id, created_at FROM departments ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		var d model.Department
		var inCharge sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &inCharge, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning department: %w", err)
		}
		d.InChargeID = inCharge.String
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// deleteDepartment removes a department.
func deleteDepartment(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting department: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// createLocation inserts a location.
func createLocation(ctx context.Context, db *sql.DB, l model.Location) (*model.Location, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO locations (id, name, building, floor) VALUES (?, ?, NULLIF(?, ''), NULLIF(?, ''))`,
		l.ID, l.Name, l.Building, l.Floor,
	)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}

	var building, floor sql.NullString
	created := &model.Location{}
	err = db.QueryRowContext(ctx,
		`SELECT id, name, building, floor, created_at FROM locations WHERE id = ?`, l.ID,
	).Scan(&created.ID, &created.Name, &building, &floor, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	created.Building = building.String
	created.Floor = floor.String
	return created, nil
}

// listLocations returns all locations.
func listLocations(ctx context.Context, db *sql.DB) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, building, floor, created_at FROM locations ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		var building, floor sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &building, &floor, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		l.Building = building.String
		l.Floor = floor.String
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// deleteLocation removes a location.
func deleteLocation(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanAssignment(scan func(...any) error) (*model.Assignment, error) {
	a := &model.Assignment{}
	var locationID sql.NullString
	var quantity sql.NullInt64
	err := scan(&a.ID, &a.DeviceID, &a.DepartmentID, &locationID, &a.Status, &quantity, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.LocationID = locationID.String
	if quantity.Valid {
		q := int(quantity.Int64)
		a.Quantity = &q
	}
	return a, nil
}

// createAssignment files a new assignment in REQUESTED status.
func createAssignment(ctx context.Context, db *sql.DB, a model.Assignment) (*model.Assignment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var quantity any
	if a.Quantity != nil {
		quantity = *a.Quantity
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO assignments (id, device_id, department_id, location_id, status, quantity)
		 VALUES (?, ?, ?, NULLIF(?, ''), ?, ?)`,
		a.ID, a.DeviceID, a.DepartmentID, a.LocationID, model.AssignmentStatusRequested, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("creating assignment: %w", err)
	}
	return getAssignment(ctx, db, a.ID)
}

// getAssignment returns an assignment by ID, or nil when absent.
func getAssignment(ctx context.Context, db *sql.DB, id string) (*model.Assignment, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, device_id, department_id, location_id, status, quantity, created_at
		 FROM assignments WHERE id = ?`, id)
	assignment, err := scanAssignment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting assignment: %w", err)
	}
	return assignment, nil
}

// listAssignments returns all assignments, optionally filtered by device.
func listAssignments(ctx context.Context, db *sql.DB, deviceID string) ([]model.Assignment, error) {
	query := `SELECT id, device_id, department_id, location_id, status, quantity, created_at
	          FROM assignments`
	args := []any{}
	if deviceID != "" {
		query += ` WHERE device_id = ?`
		args = append(args, deviceID)
	}
	query += ` ORDER BY created_at`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		assignments = append(assignments, *assignment)
	}
	return assignments, rows.Err()
}

// setAssignmentStatus updates an assignment's workflow status.
func setAssignmentStatus(ctx context.Context, db *sql.DB, id, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE assignments SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating assignment status: %w", err)
	}
	return nil
}
