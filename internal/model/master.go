package model

// NamedEntry 主数据通用条目（名称 + 略称）
type NamedEntry struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Port 港
type Port struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Berth 泊位（加载后按 port_id 补全港名）
type Berth struct {
	ID            int64  `json:"id,omitempty"`
	PortID        int64  `json:"port_id"`
	Name          string `json:"name"`
	ShortName     string `json:"short_name"`
	PortName      string `json:"port_name"`
	PortShortName string `json:"port_short_name"`
}

// TowingVessel 曳船登记（TName 为文本中匹配的船名）
type TowingVessel struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	TName     string `json:"t_name"`
	PS        string `json:"ps"`
}

// MasterData 主数据快照（一次会话内只读）
type MasterData struct {
	OperatingVessels []NamedEntry   `json:"operating_vessels"`
	Ports            []Port         `json:"ports"`
	Agents           []NamedEntry   `json:"agents"`
	LoadedCargo      []NamedEntry   `json:"loaded_cargo"`
	Berths           []Berth        `json:"berths"`
	EscortLocations  []NamedEntry   `json:"escort_locations"`
	MasterTowing     []TowingVessel `json:"master_towing"`
}

// EnrichBerths 按港 ID 关联，补全泊位的港名/港略称
func (m *MasterData) EnrichBerths() {
	ports := make(map[int64]Port, len(m.Ports))
	for _, p := range m.Ports {
		ports[p.ID] = p
	}
	for i := range m.Berths {
		p := ports[m.Berths[i].PortID]
		m.Berths[i].PortName = p.Name
		m.Berths[i].PortShortName = p.ShortName
	}
}
