package service

import (
	"fmt"
	"net"
	"strconv"

	"github.com/jinzhu/copier"

	"github.com/jimyag/panelbot/internal/panelbot/entity"
	"github.com/jimyag/panelbot/pkg/pterodactyl"
)

// serverToInstance 将面板返回的 pterodactyl.Server 转换为 entity.Instance
func serverToInstance(server *pterodactyl.Server, panelURL string) (*entity.Instance, error) {
	inst := &entity.Instance{}
	if err := copier.Copy(inst, server); err != nil {
		return nil, err
	}

	// 字段名不同的部分
	inst.Limits = entity.InstanceLimits{
		Memory: server.Limits.Memory,
		Swap:   server.Limits.Swap,
		Disk:   server.Limits.Disk,
		IO:     server.Limits.IO,
		CPU:    server.Limits.CPU,
	}
	inst.NodeID = server.Node
	inst.EggID = server.Egg
	inst.NestID = server.Nest
	inst.PanelUserID = server.User

	// 面板对安装完成且没有特殊状态的服务器返回 null
	inst.Status = "ready"
	if server.Suspended {
		inst.Status = "suspended"
	}
	if server.Status != nil && *server.Status != "" {
		inst.Status = *server.Status
	}

	if alloc := server.DefaultAllocation(); alloc != nil {
		inst.Address = net.JoinHostPort(alloc.Host(), strconv.Itoa(alloc.Port))
	}
	if server.Identifier != "" {
		inst.PanelURL = fmt.Sprintf("%s/server/%s", panelURL, server.Identifier)
	}
	return inst, nil
}
