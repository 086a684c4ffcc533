package report

// FieldInspection is the report written on site during the visit.
type FieldInspection struct {
	ExpedienteNova  string `json:"expedienteNova"`
	Fecha           string `json:"fecha"`
	CodigoInspector string `json:"codigoInspector"`
	PaisDestino     string `json:"paisDestino"`

	ReferenciaCliente string `json:"referenciaCliente"`
	NumeroContrato    string `json:"numeroContrato"`

	ResultadoInspeccion Flags `json:"resultadoInspeccion"`

	NumeroContenedor string `json:"numeroContenedor"`
	TipoContenedor   string `json:"tipoContenedor"`
	TamanoContenedor string `json:"tamanoContenedor"`
	PrecintoNova     string `json:"precintoNova"`
	PrecintoNaviera  string `json:"precintoNaviera"`

	Exportador       string `json:"exportador"`
	Proveedor        string `json:"proveedor"`
	PersonaContacto  string `json:"personaContacto"`
	LugarInspeccion  string `json:"lugarInspeccion"`
	Poblacion        string `json:"poblacion"`
	Provincia        string `json:"provincia"`
	HoraInicio       string `json:"horaInicio"`
	HoraFinalizacion string `json:"horaFinalizacion"`

	AlcanceInspeccion string `json:"alcanceInspeccion"`

	MercanciaDeclarada string `json:"mercanciaDeclarada"`
	PaisFabricacion    string `json:"paisFabricacion"`
	PuertoOrigen       string `json:"puertoOrigen"`
	PuertoDestino      string `json:"puertoDestino"`

	EmbalajePresentation string `json:"embalajePresentation"`
	Produccion           string `json:"produccion"`
	Caducidad            string `json:"caducidad"`

	TipoBulto string `json:"tipoBulto"`
	Cantidad  string `json:"cantidad"`

	PesoNeto  string `json:"pesoNeto"`
	PesoBruto string `json:"pesoBruto"`

	Estiba string `json:"estiba"`
	Otros  string `json:"otros"`

	FotosMercancia  PhotoList `json:"fotosMercancia"`
	FotosMarcas     PhotoList `json:"fotosMarcas"`
	FotosContenedor PhotoList `json:"fotosContenedor"`
}

func NewFieldInspection() *FieldInspection {
	f := &FieldInspection{}
	FieldInspectionSchema.Init(f)
	return f
}

var FieldInspectionSchema = &Schema[FieldInspection]{
	Type: TypeFieldInspection,
	Text: []TextField[FieldInspection]{
		{"expedienteNova", func(f *FieldInspection) *string { return &f.ExpedienteNova }},
		{"fecha", func(f *FieldInspection) *string { return &f.Fecha }},
		{"codigoInspector", func(f *FieldInspection) *string { return &f.CodigoInspector }},
		{"paisDestino", func(f *FieldInspection) *string { return &f.PaisDestino }},
		{"referenciaCliente", func(f *FieldInspection) *string { return &f.ReferenciaCliente }},
		{"numeroContrato", func(f *FieldInspection) *string { return &f.NumeroContrato }},
		{"numeroContenedor", func(f *FieldInspection) *string { return &f.NumeroContenedor }},
		{"tipoContenedor", func(f *FieldInspection) *string { return &f.TipoContenedor }},
		{"tamanoContenedor", func(f *FieldInspection) *string { return &f.TamanoContenedor }},
		{"precintoNova", func(f *FieldInspection) *string { return &f.PrecintoNova }},
		{"precintoNaviera", func(f *FieldInspection) *string { return &f.PrecintoNaviera }},
		{"exportador", func(f *FieldInspection) *string { return &f.Exportador }},
		{"proveedor", func(f *FieldInspection) *string { return &f.Proveedor }},
		{"personaContacto", func(f *FieldInspection) *string { return &f.PersonaContacto }},
		{"lugarInspeccion", func(f *FieldInspection) *string { return &f.LugarInspeccion }},
		{"poblacion", func(f *FieldInspection) *string { return &f.Poblacion }},
		{"provincia", func(f *FieldInspection) *string { return &f.Provincia }},
		{"horaInicio", func(f *FieldInspection) *string { return &f.HoraInicio }},
		{"horaFinalizacion", func(f *FieldInspection) *string { return &f.HoraFinalizacion }},
		{"alcanceInspeccion", func(f *FieldInspection) *string { return &f.AlcanceInspeccion }},
		{"mercanciaDeclarada", func(f *FieldInspection) *string { return &f.MercanciaDeclarada }},
		{"paisFabricacion", func(f *FieldInspection) *string { return &f.PaisFabricacion }},
		{"puertoOrigen", func(f *FieldInspection) *string { return &f.PuertoOrigen }},
		{"puertoDestino", func(f *FieldInspection) *string { return &f.PuertoDestino }},
		{"embalajePresentation", func(f *FieldInspection) *string { return &f.EmbalajePresentation }},
		{"produccion", func(f *FieldInspection) *string { return &f.Produccion }},
		{"caducidad", func(f *FieldInspection) *string { return &f.Caducidad }},
		{"tipoBulto", func(f *FieldInspection) *string { return &f.TipoBulto }},
		{"cantidad", func(f *FieldInspection) *string { return &f.Cantidad }},
		{"pesoNeto", func(f *FieldInspection) *string { return &f.PesoNeto }},
		{"pesoBruto", func(f *FieldInspection) *string { return &f.PesoBruto }},
		{"estiba", func(f *FieldInspection) *string { return &f.Estiba }},
		{"otros", func(f *FieldInspection) *string { return &f.Otros }},
	},
	Groups: []GroupField[FieldInspection]{
		{
			Key: "resultadoInspeccion",
			Options: []Option{
				{"satisfactoria", "Satisfactoria"},
				{"noSatisfactoria", "No Satisfactoria"},
				{"condicional", "Condicional"},
				{"fallida", "Fallida"},
			},
			Get: func(f *FieldInspection) *Flags { return &f.ResultadoInspeccion },
		},
	},
	Photos: []PhotoField[FieldInspection]{
		{"fotosMercancia", BucketMercancia, func(f *FieldInspection) *PhotoList { return &f.FotosMercancia }},
		{"fotosMarcas", BucketMarcas, func(f *FieldInspection) *PhotoList { return &f.FotosMarcas }},
		{"fotosContenedor", BucketContenedor, func(f *FieldInspection) *PhotoList { return &f.FotosContenedor }},
	},
}
