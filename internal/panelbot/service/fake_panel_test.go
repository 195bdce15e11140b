package service

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/internal/panelbot/repository"
	"github.com/jimyag/panelbot/pkg/apierror"
	"github.com/jimyag/panelbot/pkg/pterodactyl"
)

// fakePanel 内存中的面板，实现 pterodactyl.PanelClient
type fakePanel struct {
	mu sync.Mutex

	users       map[int]*pterodactyl.User
	servers     map[int]*pterodactyl.Server
	nodes       []pterodactyl.Node
	allocations map[int][]pterodactyl.Allocation
	eggs        map[[2]int]*pterodactyl.Egg
	nests       []pterodactyl.Nest

	nextUserID   int
	nextServerID int

	// 故障注入
	listServersErr   error
	getServerErr     error
	deleteServerErr  error
	allocationErrs   map[int]error
	createServerErrs []error // 依次返回，用完后正常创建

	createServerCalls []pterodactyl.CreateServerRequest
	createUserCalls   int
	updateUserCalls   []pterodactyl.UpdateUserRequest
}

var _ pterodactyl.PanelClient = (*fakePanel)(nil)

func newFakePanel() *fakePanel {
	return &fakePanel{
		users:          make(map[int]*pterodactyl.User),
		servers:        make(map[int]*pterodactyl.Server),
		allocations:    make(map[int][]pterodactyl.Allocation),
		eggs:           make(map[[2]int]*pterodactyl.Egg),
		allocationErrs: make(map[int]error),
		nextUserID:     1,
		nextServerID:   100,
	}
}

// responseError 构造与真实客户端一致的面板错误
func responseError(method, path string, status int, detail string) error {
	re := &pterodactyl.ResponseError{Method: method, Path: path, StatusCode: status}
	if detail != "" {
		re.Details = []pterodactyl.ErrorDetail{{Status: fmt.Sprint(status), Detail: detail}}
		re.Body = fmt.Sprintf(`{"errors":[{"detail":%q}]}`, detail)
	}
	return apierror.Wrap(apierror.ErrRemoteTransport, re)
}

func (p *fakePanel) addNode(id int, allocs ...pterodactyl.Allocation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nodes = append(p.nodes, pterodactyl.Node{ID: id, Name: fmt.Sprintf("node-%d", id)})
	p.allocations[id] = append(p.allocations[id], allocs...)
}

func (p *fakePanel) addEgg(nestID int, egg pterodactyl.Egg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	egg.Nest = nestID
	p.eggs[[2]int{nestID, egg.ID}] = &egg
}

func (p *fakePanel) addUser(email string) *pterodactyl.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := &pterodactyl.User{ID: p.nextUserID, Email: email, Username: "existing", FirstName: "Ex", LastName: "Isting"}
	p.nextUserID++
	p.users[u.ID] = u
	return u
}

func (p *fakePanel) addServer(owner int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextServerID
	p.nextServerID++
	p.servers[id] = &pterodactyl.Server{ID: id, User: owner, Name: fmt.Sprintf("server-%d", id), Identifier: fmt.Sprintf("id%d", id)}
	return id
}

func (p *fakePanel) serverCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.servers)
}

func (p *fakePanel) BaseURL() string { return "https://panel.test" }

func (p *fakePanel) FindUserByEmail(_ context.Context, email string) (*pterodactyl.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (p *fakePanel) GetUser(_ context.Context, userID int) (*pterodactyl.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[userID]
	if !ok {
		return nil, responseError(http.MethodGet, "/users", http.StatusNotFound, "")
	}
	cp := *u
	return &cp, nil
}

func (p *fakePanel) CreateUser(_ context.Context, req *pterodactyl.CreateUserRequest) (*pterodactyl.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createUserCalls++
	u := &pterodactyl.User{
		ID:        p.nextUserID,
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	p.nextUserID++
	p.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (p *fakePanel) UpdateUser(_ context.Context, userID int, req *pterodactyl.UpdateUserRequest) (*pterodactyl.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[userID]
	if !ok {
		return nil, responseError(http.MethodPatch, "/users", http.StatusNotFound, "")
	}
	p.updateUserCalls = append(p.updateUserCalls, *req)
	u.Username, u.Email, u.FirstName, u.LastName = req.Username, req.Email, req.FirstName, req.LastName
	cp := *u
	return &cp, nil
}

func (p *fakePanel) ListServers(_ context.Context) ([]pterodactyl.Server, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listServersErr != nil {
		return nil, p.listServersErr
	}
	out := make([]pterodactyl.Server, 0, len(p.servers))
	for id := p.nextServerID - 1; id >= 0; id-- {
		if s, ok := p.servers[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (p *fakePanel) ListServersByOwner(ctx context.Context, userID int) ([]pterodactyl.Server, error) {
	servers, err := p.ListServers(ctx)
	if err != nil {
		return nil, err
	}
	var out []pterodactyl.Server
	for _, s := range servers {
		if s.User == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (p *fakePanel) GetServer(_ context.Context, serverID int) (*pterodactyl.Server, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getServerErr != nil {
		return nil, p.getServerErr
	}
	s, ok := p.servers[serverID]
	if !ok {
		return nil, responseError(http.MethodGet, "/servers", http.StatusNotFound, "")
	}
	cp := *s
	return &cp, nil
}

func (p *fakePanel) CreateServer(_ context.Context, req *pterodactyl.CreateServerRequest) (*pterodactyl.Server, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createServerCalls = append(p.createServerCalls, *req)

	if len(p.createServerErrs) > 0 {
		err := p.createServerErrs[0]
		p.createServerErrs = p.createServerErrs[1:]
		return nil, err
	}

	var alloc *pterodactyl.Allocation
	for _, allocs := range p.allocations {
		for i := range allocs {
			if allocs[i].ID == req.Allocation.Default {
				if allocs[i].Assigned {
					return nil, apierror.WrapError(apierror.ErrPlacementConflict, "conflict",
						&pterodactyl.ResponseError{StatusCode: http.StatusUnprocessableEntity, Body: "allocation already assigned"})
				}
				allocs[i].Assigned = true
				alloc = &allocs[i]
			}
		}
	}
	if alloc == nil {
		return nil, responseError(http.MethodPost, "/servers", http.StatusUnprocessableEntity, "The selected allocation is invalid.")
	}

	id := p.nextServerID
	p.nextServerID++
	s := &pterodactyl.Server{
		ID:          id,
		Identifier:  fmt.Sprintf("srv%d", id),
		Name:        req.Name,
		Description: req.Description,
		User:        req.User,
		Egg:         req.Egg,
		Allocation:  alloc.ID,
		Limits:      req.Limits,
	}
	p.servers[id] = s
	cp := *s
	return &cp, nil
}

func (p *fakePanel) DeleteServer(_ context.Context, serverID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteServerErr != nil {
		return p.deleteServerErr
	}
	if _, ok := p.servers[serverID]; !ok {
		return responseError(http.MethodDelete, "/servers", http.StatusNotFound, "")
	}
	delete(p.servers, serverID)
	return nil
}

func (p *fakePanel) ListNests(_ context.Context) ([]pterodactyl.Nest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pterodactyl.Nest(nil), p.nests...), nil
}

func (p *fakePanel) ListEggs(_ context.Context, nestID int) ([]pterodactyl.Egg, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pterodactyl.Egg
	for key, egg := range p.eggs {
		if key[0] == nestID {
			out = append(out, *egg)
		}
	}
	return out, nil
}

func (p *fakePanel) GetEgg(_ context.Context, nestID, eggID int) (*pterodactyl.Egg, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	egg, ok := p.eggs[[2]int{nestID, eggID}]
	if !ok {
		return nil, apierror.WrapError(apierror.ErrEggNotFound, "egg not found",
			&pterodactyl.ResponseError{StatusCode: http.StatusNotFound})
	}
	cp := *egg
	return &cp, nil
}

func (p *fakePanel) ListNodes(_ context.Context) ([]pterodactyl.Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pterodactyl.Node(nil), p.nodes...), nil
}

func (p *fakePanel) ListAllocations(_ context.Context, nodeID int) ([]pterodactyl.Allocation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.allocationErrs[nodeID]; err != nil {
		return nil, err
	}
	return append([]pterodactyl.Allocation(nil), p.allocations[nodeID]...), nil
}

// failingStore 所有写操作都失败的仓库
type failingStore struct {
	repository.Store
}

func (failingStore) SaveLinks(context.Context, map[string]int) error {
	return fmt.Errorf("disk full")
}

func (failingStore) SaveAuthCodes(context.Context, map[string]entity.AuthCode) error {
	return fmt.Errorf("disk full")
}

func (failingStore) SaveOwnerships(context.Context, map[string][]int) error {
	return fmt.Errorf("disk full")
}

// testEnv 每个测试用例独立的服务和依赖
type testEnv struct {
	Panel        *fakePanel
	Store        repository.Store
	State        *State
	Links        *LinkService
	Placement    *PlacementService
	Templates    *TemplateCatalog
	Instances    *InstanceService
	Confirmation *ConfirmationService
	DataDir      string
}

var testTemplates = []entity.Template{
	{
		Name: "python", DisplayName: "Python", Description: "Python server",
		MemoryMB: 4096, DiskMB: 2048, CPUHundredths: 200, NestID: 5, EggID: 15,
	},
	{
		Name: "web-hosting", DisplayName: "Web Hosting", Description: "Web Hosting server",
		MemoryMB: 3072, DiskMB: 2048, CPUHundredths: 200, NestID: 5, EggID: 24,
		EnvironmentOverrides: map[string]string{"PHP_VERSION": "8.4"},
	},
	{
		Name: "lavalink", DisplayName: "Lavalink", Description: "Lavalink server",
		MemoryMB: 1024, DiskMB: 500, CPUHundredths: 200, NestID: 5, EggID: 17,
	},
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dataDir := t.TempDir()
	store, err := repository.NewFileStore(filepath.Join(dataDir, "state"))
	require.NoError(t, err)

	return newTestEnvWithStore(t, store, dataDir)
}

func newTestEnvWithStore(t *testing.T, store repository.Store, dataDir string) *testEnv {
	t.Helper()

	panel := newFakePanel()
	panel.addEgg(5, pterodactyl.Egg{ID: 15, Name: "Python Generic", DockerImage: "ghcr.io/parkervcp/yolks:python_3.11", Startup: "python {{PY_FILE}}"})
	panel.addEgg(5, pterodactyl.Egg{ID: 24, Name: "Nginx PHP", DockerImage: "nginx-php"})
	panel.addEgg(5, pterodactyl.Egg{ID: 17, Name: "Lavalink", DockerImage: "lavalink"})

	ctx := context.Background()
	state := NewState(ctx, store)
	templates := NewTemplateCatalog(testTemplates)
	placement := NewPlacementService(panel)
	instances := NewInstanceService(state, panel, placement, templates, DefaultMaxInstancesPerUser)

	return &testEnv{
		Panel:        panel,
		Store:        store,
		State:        state,
		Links:        NewLinkService(state, panel, DefaultCodeTTL),
		Placement:    placement,
		Templates:    templates,
		Instances:    instances,
		Confirmation: NewConfirmationService(instances, DefaultConfirmTimeout),
		DataDir:      dataDir,
	}
}

// link 直接写入绑定关系
func (e *testEnv) link(t *testing.T, externalUserID string, panelUserID int) {
	t.Helper()
	c, err := e.State.IssueAuthCode(context.Background(), externalUserID, e.Links.now(), time.Hour, generateCode)
	require.NoError(t, err)
	e.State.CompleteLink(context.Background(), c.Code, externalUserID, panelUserID)
}

func mustFileStore(t *testing.T) repository.Store {
	t.Helper()
	store, err := repository.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}
