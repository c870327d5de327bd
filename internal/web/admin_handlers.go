package web

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/plantora/storefront/internal/apiclient"
	"github.com/plantora/storefront/internal/models"
	"github.com/plantora/storefront/internal/services"
)

// adminListPage is the shared view model for back-office collection
// screens: the rows plus the search and pagination state they were
// fetched with.
type adminListPage[T any] struct {
	Items      []T
	Q          string
	Status     string
	Page       int
	TotalPages int
}

func resourceFilter(r *http.Request) services.ResourceFilter {
	return services.ResourceFilter{
		Page:   queryInt(r, "page", 1),
		Size:   20,
		Search: r.URL.Query().Get("q"),
	}
}

// AdminDashboardHandler renders the back-office landing page. The two
// collection fetches are issued concurrently and both awaited before
// rendering.
func (a *App) AdminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	var (
		wg         sync.WaitGroup
		orders     []models.Order
		orderPage  models.Page
		products   []models.Product
		prodPage   models.Page
		ordersErr  error
		productErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		orders, orderPage, ordersErr = a.orders.ListAll(r.Context(), sess.Token, services.OrderFilter{Page: 1, Size: 5})
	}()
	go func() {
		defer wg.Done()
		products, prodPage, productErr = a.admin.ListProducts(r.Context(), sess.Token, services.ResourceFilter{Page: 1, Size: 5})
	}()
	wg.Wait()

	data := map[string]any{
		"RecentOrders":  orders,
		"OrderCount":    orderPage.TotalItems,
		"ProductCount":  prodPage.TotalItems,
		"LatestProduct": firstOrNil(products),
	}
	if err := errors.Join(ordersErr, productErr); err != nil {
		data["Error"] = err.Error()
	}
	a.render(w, r, "admin_dashboard", "Bảng điều khiển", data)
}

func firstOrNil(products []models.Product) *models.Product {
	if len(products) == 0 {
		return nil
	}
	return &products[0]
}

// AdminUsersHandler renders the user accounts screen.
func (a *App) AdminUsersHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	filter := resourceFilter(r)

	users, pageInfo, err := a.admin.ListUsers(r.Context(), sess.Token, filter)
	if err != nil {
		// An unrecognized envelope degrades to an empty list
		if !errors.Is(err, apiclient.ErrUnknownShape) {
			a.render(w, r, "admin_users", "Người dùng", map[string]any{"Error": err.Error()})
			return
		}
		users, pageInfo = nil, models.Page{Number: filter.Page, TotalPages: 1}
	}

	roles, err := a.admin.ListRoles(r.Context(), sess.Token)
	if err != nil {
		roles = nil
	}

	a.render(w, r, "admin_users", "Người dùng", map[string]any{
		"List": adminListPage[models.User]{
			Items:      users,
			Q:          filter.Search,
			Page:       pageInfo.Number,
			TotalPages: pageInfo.TotalPages,
		},
		"Roles": roles,
	})
}

// AdminUserCreateHandler adds a user account.
func (a *App) AdminUserCreateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	body := map[string]any{
		"name":     r.FormValue("name"),
		"email":    r.FormValue("email"),
		"password": r.FormValue("password"),
		"role":     r.FormValue("role"),
	}
	if err := a.admin.CreateUser(r.Context(), sess.Token, body); err != nil {
		a.redirectErr(w, r, "/admin/users", err)
		return
	}
	a.redirectOK(w, r, "/admin/users", "Đã tạo người dùng")
}

// AdminUserUpdateHandler modifies a user account.
func (a *App) AdminUserUpdateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	body := map[string]any{
		"name":  r.FormValue("name"),
		"email": r.FormValue("email"),
		"role":  r.FormValue("role"),
	}
	if err := a.admin.UpdateUser(r.Context(), sess.Token, id, body); err != nil {
		a.redirectErr(w, r, "/admin/users", err)
		return
	}
	a.redirectOK(w, r, "/admin/users", "Đã cập nhật người dùng")
}

// AdminUserDeleteHandler removes a user account.
func (a *App) AdminUserDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := a.admin.DeleteUser(r.Context(), sess.Token, id); err != nil {
		a.redirectErr(w, r, "/admin/users", err)
		return
	}
	a.redirectOK(w, r, "/admin/users", "Đã xóa người dùng")
}

// AdminRolesHandler renders the roles screen.
func (a *App) AdminRolesHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	roles, err := a.admin.ListRoles(r.Context(), sess.Token)
	if err != nil {
		a.render(w, r, "admin_roles", "Vai trò", map[string]any{"Error": err.Error()})
		return
	}
	a.render(w, r, "admin_roles", "Vai trò", map[string]any{"Roles": roles})
}

// AdminRoleCreateHandler adds a role.
func (a *App) AdminRoleCreateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := a.admin.CreateRole(r.Context(), sess.Token, r.FormValue("name")); err != nil {
		a.redirectErr(w, r, "/admin/roles", err)
		return
	}
	a.redirectOK(w, r, "/admin/roles", "Đã tạo vai trò")
}

// AdminRoleUpdateHandler renames a role.
func (a *App) AdminRoleUpdateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := a.admin.UpdateRole(r.Context(), sess.Token, id, r.FormValue("name")); err != nil {
		a.redirectErr(w, r, "/admin/roles", err)
		return
	}
	a.redirectOK(w, r, "/admin/roles", "Đã cập nhật vai trò")
}

// AdminRoleDeleteHandler removes a role.
func (a *App) AdminRoleDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := a.admin.DeleteRole(r.Context(), sess.Token, id); err != nil {
		a.redirectErr(w, r, "/admin/roles", err)
		return
	}
	a.redirectOK(w, r, "/admin/roles", "Đã xóa vai trò")
}

// AdminCategoriesHandler renders the categories screen.
func (a *App) AdminCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	filter := resourceFilter(r)

	categories, pageInfo, err := a.admin.ListCategories(r.Context(), sess.Token, filter)
	if err != nil {
		a.render(w, r, "admin_categories", "Danh mục", map[string]any{"Error": err.Error()})
		return
	}
	a.render(w, r, "admin_categories", "Danh mục", map[string]any{
		"List": adminListPage[models.Category]{
			Items:      categories,
			Q:          filter.Search,
			Page:       pageInfo.Number,
			TotalPages: pageInfo.TotalPages,
		},
	})
}

// AdminCategoryCreateHandler adds a category.
func (a *App) AdminCategoryCreateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	category := models.Category{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
	if err := a.admin.CreateCategory(r.Context(), sess.Token, category); err != nil {
		a.redirectErr(w, r, "/admin/categories", err)
		return
	}
	a.redirectOK(w, r, "/admin/categories", "Đã tạo danh mục")
}

// AdminCategoryUpdateHandler modifies a category.
func (a *App) AdminCategoryUpdateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	category := models.Category{
		ID:          id,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
	if err := a.admin.UpdateCategory(r.Context(), sess.Token, id, category); err != nil {
		a.redirectErr(w, r, "/admin/categories", err)
		return
	}
	a.redirectOK(w, r, "/admin/categories", "Đã cập nhật danh mục")
}

// AdminCategoryDeleteHandler removes a category.
func (a *App) AdminCategoryDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := a.admin.DeleteCategory(r.Context(), sess.Token, id); err != nil {
		a.redirectErr(w, r, "/admin/categories", err)
		return
	}
	a.redirectOK(w, r, "/admin/categories", "Đã xóa danh mục")
}

func productFromForm(r *http.Request) models.Product {
	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	return models.Product{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Image:       r.FormValue("image"),
		CategoryID:  formInt64(r, "category_id"),
		Stock:       formInt(r, "stock"),
	}
}

// AdminProductsHandler renders the products screen.
func (a *App) AdminProductsHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	filter := resourceFilter(r)

	products, pageInfo, err := a.admin.ListProducts(r.Context(), sess.Token, filter)
	if err != nil {
		a.render(w, r, "admin_products", "Sản phẩm", map[string]any{"Error": err.Error()})
		return
	}

	categories, _, err := a.admin.ListCategories(r.Context(), sess.Token, services.ResourceFilter{Size: 100})
	if err != nil {
		categories = nil
	}

	a.render(w, r, "admin_products", "Sản phẩm", map[string]any{
		"List": adminListPage[models.Product]{
			Items:      products,
			Q:          filter.Search,
			Page:       pageInfo.Number,
			TotalPages: pageInfo.TotalPages,
		},
		"Categories": categories,
	})
}

// AdminProductCreateHandler adds a product.
func (a *App) AdminProductCreateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := a.admin.CreateProduct(r.Context(), sess.Token, productFromForm(r)); err != nil {
		a.redirectErr(w, r, "/admin/products", err)
		return
	}
	a.redirectOK(w, r, "/admin/products", "Đã tạo sản phẩm")
}

// AdminProductUpdateHandler modifies a product.
func (a *App) AdminProductUpdateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	product := productFromForm(r)
	product.ID = id
	if err := a.admin.UpdateProduct(r.Context(), sess.Token, id, product); err != nil {
		a.redirectErr(w, r, "/admin/products", err)
		return
	}
	a.redirectOK(w, r, "/admin/products", "Đã cập nhật sản phẩm")
}

// AdminProductDeleteHandler removes a product.
func (a *App) AdminProductDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := a.admin.DeleteProduct(r.Context(), sess.Token, id); err != nil {
		a.redirectErr(w, r, "/admin/products", err)
		return
	}
	a.redirectOK(w, r, "/admin/products", "Đã xóa sản phẩm")
}

// AdminOrdersHandler renders the orders screen.
func (a *App) AdminOrdersHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	filter := services.OrderFilter{
		Page:   queryInt(r, "page", 1),
		Size:   20,
		Search: r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}

	orders, pageInfo, err := a.orders.ListAll(r.Context(), sess.Token, filter)
	if err != nil {
		a.render(w, r, "admin_orders", "Đơn hàng", map[string]any{"Error": err.Error()})
		return
	}

	a.render(w, r, "admin_orders", "Đơn hàng", map[string]any{
		"List": adminListPage[models.Order]{
			Items:      orders,
			Q:          filter.Search,
			Status:     filter.Status,
			Page:       pageInfo.Number,
			TotalPages: pageInfo.TotalPages,
		},
		"Statuses": models.OrderStatuses,
	})
}

// AdminOrderStatusHandler changes an order's status. The change is not
// applied optimistically: on failure the list is refetched on redirect, so
// the screen shows the order's previous (server-confirmed) status together
// with the failure banner.
func (a *App) AdminOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	status := r.FormValue("status")

	if err := a.orders.UpdateStatus(r.Context(), sess.Token, id, status); err != nil {
		a.redirectErr(w, r, "/admin/orders", err)
		return
	}
	a.redirectOK(w, r, "/admin/orders", "Đã cập nhật trạng thái đơn hàng")
}

// AdminInventoryHandler renders the inventory screen.
func (a *App) AdminInventoryHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	filter := resourceFilter(r)

	records, pageInfo, err := a.inventory.List(r.Context(), sess.Token, filter)
	if err != nil {
		// An unrecognized envelope degrades to an empty list
		if !errors.Is(err, apiclient.ErrUnknownShape) {
			a.render(w, r, "admin_inventory", "Tồn kho", map[string]any{"Error": err.Error()})
			return
		}
		records, pageInfo = nil, models.Page{Number: filter.Page, TotalPages: 1}
	}

	a.render(w, r, "admin_inventory", "Tồn kho", map[string]any{
		"List": adminListPage[models.Inventory]{
			Items:      records,
			Q:          filter.Search,
			Page:       pageInfo.Number,
			TotalPages: pageInfo.TotalPages,
		},
	})
}

// AdminInventoryCreateHandler adds an inventory record.
func (a *App) AdminInventoryCreateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	record := models.Inventory{
		ProductID: formInt64(r, "product_id"),
		Quantity:  formInt(r, "quantity"),
	}
	if err := a.inventory.Create(r.Context(), sess.Token, record); err != nil {
		a.redirectErr(w, r, "/admin/inventory", err)
		return
	}
	a.redirectOK(w, r, "/admin/inventory", "Đã tạo bản ghi tồn kho")
}

// AdminInventoryUpdateHandler modifies an inventory record.
func (a *App) AdminInventoryUpdateHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	record := models.Inventory{
		ID:        id,
		ProductID: formInt64(r, "product_id"),
		Quantity:  formInt(r, "quantity"),
	}
	if err := a.inventory.Update(r.Context(), sess.Token, id, record); err != nil {
		a.redirectErr(w, r, "/admin/inventory", err)
		return
	}
	a.redirectOK(w, r, "/admin/inventory", "Đã cập nhật tồn kho")
}

// AdminInventoryDeleteHandler removes an inventory record.
func (a *App) AdminInventoryDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := a.inventory.Delete(r.Context(), sess.Token, id); err != nil {
		a.redirectErr(w, r, "/admin/inventory", err)
		return
	}
	a.redirectOK(w, r, "/admin/inventory", "Đã xóa bản ghi tồn kho")
}
