package block

import "fmt"

// Type представляет код материала вокселя
type Type uint8

// Коды материалов. Значения совпадают с кодами в массивах чанков.
const (
	Empty           Type = iota // 0 - пустота
	Terrain                     // 1 - грунт
	BuildingGeneric             // 2 - устаревший обобщённый блок постройки (обрушивается)
	Stone                       // 3 - камень: фундаменты, замки, башни (обрушивается)
	Wood                        // 4
	Plaster                     // 5 - штукатурка стен
	Roof                        // 6 - синяя кровля
	Window                      // 7
	WoodDark                    // 8 - балки фахверка
	RoofRed                     // 9
	RoofGreen                   // 10

	// Count - количество известных материалов
	Count = int(RoofGreen) + 1
)

// Properties описывает свойства материала
type Properties struct {
	Name        string
	Solid       bool   // Участвует в коллизиях и мешинге
	Collapsible bool   // Падает под действием гравитации после разрушений
	Decorative  bool   // Элемент оформления построек: остаётся висеть без опоры
	DebrisColor uint32 // Цвет обломков (0xRRGGBB)
}

// Таблица свойств. Обрушиваются только BuildingGeneric и Stone:
// декоративные материалы остаются на месте даже без опоры.
var registry = [Count]Properties{
	Empty:           {Name: "empty"},
	Terrain:         {Name: "terrain", Solid: true, DebrisColor: 0x00ff00},
	BuildingGeneric: {Name: "building", Solid: true, Collapsible: true, DebrisColor: 0x808080},
	Stone:           {Name: "stone", Solid: true, Collapsible: true, DebrisColor: 0x444444},
	Wood:            {Name: "wood", Solid: true, Decorative: true, DebrisColor: 0x7a4b2a},
	Plaster:         {Name: "plaster", Solid: true, Decorative: true, DebrisColor: 0xe6e0d7},
	Roof:            {Name: "roof", Solid: true, Decorative: true, DebrisColor: 0x3f5aa5},
	Window:          {Name: "window", Solid: true, Decorative: true, DebrisColor: 0x84d6ff},
	WoodDark:        {Name: "wood_dark", Solid: true, Decorative: true, DebrisColor: 0x3a241a},
	RoofRed:         {Name: "roof_red", Solid: true, Decorative: true, DebrisColor: 0xb23b33},
	RoofGreen:       {Name: "roof_green", Solid: true, Decorative: true, DebrisColor: 0x1d5b2a},
}

// Get возвращает свойства материала
func Get(t Type) (Properties, bool) {
	if int(t) >= Count {
		return Properties{}, false
	}
	return registry[t], true
}

// IsValid проверяет, является ли код допустимым материалом
func IsValid(t Type) bool {
	return int(t) < Count
}

// IsSolid сообщает, что воксель не пустой
func (t Type) IsSolid() bool {
	return t != Empty
}

// IsCollapsible сообщает, что воксель подвержен обрушению
func (t Type) IsCollapsible() bool {
	p, ok := Get(t)
	return ok && p.Collapsible
}

// String возвращает имя материала
func (t Type) String() string {
	if p, ok := Get(t); ok {
		return p.Name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Solids возвращает все непустые материалы в порядке кодов
func Solids() []Type {
	out := make([]Type, 0, Count-1)
	for t := Terrain; int(t) < Count; t++ {
		out = append(out, t)
	}
	return out
}
