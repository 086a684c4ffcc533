package report

// FinalInspection is the inspection report delivered to the client.
type FinalInspection struct {
	ExpedienteNova    string `json:"expedienteNova"`
	ExpedienteCliente string `json:"expedienteCliente"`
	FechaInspeccion   string `json:"fechaInspeccion"`

	Mercancia              string `json:"mercancia"`
	NumeroContrato         string `json:"numeroContrato"`
	ViaTransporte          Flags  `json:"viaTransporte"`
	TipoCarga              Flags  `json:"tipoCarga"`
	NumeroContenedores     string `json:"numeroContenedores"`
	TipoContenedor         string `json:"tipoContenedor"`
	NumeracionContenedores string `json:"numeracionContenedores"`
	PrecintosNova          string `json:"precintosNova"`
	PrecintosNaviera       string `json:"precintosNaviera"`
	Puertos                string `json:"puertos"`

	VendedorEmpresa   string `json:"vendedorEmpresa"`
	VendedorContacto  string `json:"vendedorContacto"`
	VendedorDireccion string `json:"vendedorDireccion"`
	VendedorEmail     string `json:"vendedorEmail"`
	VendedorCodPostal string `json:"vendedorCodPostal"`
	VendedorTelefono  string `json:"vendedorTelefono"`
	VendedorPoblacion string `json:"vendedorPoblacion"`
	VendedorMovil     string `json:"vendedorMovil"`

	CompradorEmpresa   string `json:"compradorEmpresa"`
	CompradorContacto  string `json:"compradorContacto"`
	CompradorDireccion string `json:"compradorDireccion"`
	CompradorEmail     string `json:"compradorEmail"`
	CompradorCodPostal string `json:"compradorCodPostal"`
	CompradorTelefono  string `json:"compradorTelefono"`
	CompradorPoblacion string `json:"compradorPoblacion"`
	CompradorMovil     string `json:"compradorMovil"`

	LugarInspeccion string `json:"lugarInspeccion"`

	Alcance TriStates `json:"alcance"`

	RevisionContenedores Flags `json:"revisionContenedores"`

	NumeroBultos   string    `json:"numeroBultos"`
	BultosFotos    PhotoList `json:"bultosFotos"`
	AperturaBultos string    `json:"aperturaBultos"`
	PesajeBultos   string    `json:"pesajeBultos"`
	DetallePesos   string    `json:"detallePesos"`

	EmbalajeTipo         Flags `json:"embalajeTipo"`
	EmbalajeMaterial     Flags `json:"embalajeMaterial"`
	EmbalajePresentation Flags `json:"embalajePresentation"`

	MarcasDetalle                string    `json:"marcasDetalle"`
	MarcasFotos                  PhotoList `json:"marcasFotos"`
	SenalesInternacionales       bool      `json:"senalesInternacionales"`
	FechaProduccionDetalle       string    `json:"fechaProduccionDetalle"`
	FechaCaducidadDetalle        string    `json:"fechaCaducidadDetalle"`
	LotesDetalle                 string    `json:"lotesDetalle"`
	CertificadosDetalle          string    `json:"certificadosDetalle"`
	TomaMuestrasDetalle          string    `json:"tomaMuestrasDetalle"`
	PruebasLaboratorioDetalle    string    `json:"pruebasLaboratorioDetalle"`
	PesajeContenedorDetalle      string    `json:"pesajeContenedorDetalle"`
	TiqueOficialDetalle          string    `json:"tiqueOficialDetalle"`
	TemperaturaContenedorDetalle string    `json:"temperaturaContenedorDetalle"`
	PrecintadoContenedorDetalle  string    `json:"precintadoContenedorDetalle"`
	PrecintadoFotos              PhotoList `json:"precintadoFotos"`
	PrecintoSeguridadDetalle     string    `json:"precintoSeguridadDetalle"`

	DescripcionEstibaTexto string `json:"descripcionEstibaTexto"`
	OtrosHallazgos         string `json:"otrosHallazgos"`
	Conclusiones           string `json:"conclusiones"`
	Anexos                 string `json:"anexos"`
	LugarFecha             string `json:"lugarFecha"`
}

func NewFinalInspection() *FinalInspection {
	f := &FinalInspection{}
	FinalInspectionSchema.Init(f)
	return f
}

// ScopeItems are the inspection scope items of the final report.
var ScopeItems = []Option{
	{"revisionContenedor", "Revisión del estado del contenedor"},
	{"conteoBultos", "Conteo de bultos"},
	{"aperturaBultos", "Apertura de bultos"},
	{"pesajeBultos", "Pesaje de bultos"},
	{"embalaje", "Embalaje"},
	{"paletsFumigados", "Palets fumigados"},
	{"marcas", "Marcas"},
	{"descripcionEstiba", "Descripción de estiba"},
	{"mercanciaTrincada", "Indicar si la mercancía se trinca al contenedor"},
	{"fechaProduccion", "Fecha de producción"},
	{"fechaCaducidad", "Fecha de caducidad"},
	{"lotes", "Lotes"},
	{"certificadosCalidad", "Certificados de Calidad/Espec. Técnicas"},
	{"tomaMuestras", "Toma de muestras"},
	{"pruebasLaboratorio", "Pruebas de laboratorio"},
	{"pesajeContenedor", "Pesaje de contenedor"},
	{"tiqueOficial", "Tique oficial de pesaje"},
	{"temperaturaAlmacenaje", "Temperatura almacenaje previo carga"},
	{"temperaturaContenedor", "Temperatura de contenedor"},
	{"precintadoContenedor", "Precintado de contenedor"},
	{"precintadoGrupaje", "Precintado en grupaje (si es posible)"},
	{"precintoSeguridad", `Precinto de seguridad "barra a barra"`},
	{"informeCampo", "Se puede entregar Informe de Campo"},
}

var FinalInspectionSchema = &Schema[FinalInspection]{
	Type: TypeFinalInspection,
	Text: []TextField[FinalInspection]{
		{"expedienteNova", func(f *FinalInspection) *string { return &f.ExpedienteNova }},
		{"expedienteCliente", func(f *FinalInspection) *string { return &f.ExpedienteCliente }},
		{"fechaInspeccion", func(f *FinalInspection) *string { return &f.FechaInspeccion }},
		{"mercancia", func(f *FinalInspection) *string { return &f.Mercancia }},
		{"numeroContrato", func(f *FinalInspection) *string { return &f.NumeroContrato }},
		{"numeroContenedores", func(f *FinalInspection) *string { return &f.NumeroContenedores }},
		{"tipoContenedor", func(f *FinalInspection) *string { return &f.TipoContenedor }},
		{"numeracionContenedores", func(f *FinalInspection) *string { return &f.NumeracionContenedores }},
		{"precintosNova", func(f *FinalInspection) *string { return &f.PrecintosNova }},
		{"precintosNaviera", func(f *FinalInspection) *string { return &f.PrecintosNaviera }},
		{"puertos", func(f *FinalInspection) *string { return &f.Puertos }},
		{"vendedorEmpresa", func(f *FinalInspection) *string { return &f.VendedorEmpresa }},
		{"vendedorContacto", func(f *FinalInspection) *string { return &f.VendedorContacto }},
		{"vendedorDireccion", func(f *FinalInspection) *string { return &f.VendedorDireccion }},
		{"vendedorEmail", func(f *FinalInspection) *string { return &f.VendedorEmail }},
		{"vendedorCodPostal", func(f *FinalInspection) *string { return &f.VendedorCodPostal }},
		{"vendedorTelefono", func(f *FinalInspection) *string { return &f.VendedorTelefono }},
		{"vendedorPoblacion", func(f *FinalInspection) *string { return &f.VendedorPoblacion }},
		{"vendedorMovil", func(f *FinalInspection) *string { return &f.VendedorMovil }},
		{"compradorEmpresa", func(f *FinalInspection) *string { return &f.CompradorEmpresa }},
		{"compradorContacto", func(f *FinalInspection) *string { return &f.CompradorContacto }},
		{"compradorDireccion", func(f *FinalInspection) *string { return &f.CompradorDireccion }},
		{"compradorEmail", func(f *FinalInspection) *string { return &f.CompradorEmail }},
		{"compradorCodPostal", func(f *FinalInspection) *string { return &f.CompradorCodPostal }},
		{"compradorTelefono", func(f *FinalInspection) *string { return &f.CompradorTelefono }},
		{"compradorPoblacion", func(f *FinalInspection) *string { return &f.CompradorPoblacion }},
		{"compradorMovil", func(f *FinalInspection) *string { return &f.CompradorMovil }},
		{"lugarInspeccion", func(f *FinalInspection) *string { return &f.LugarInspeccion }},
		{"numeroBultos", func(f *FinalInspection) *string { return &f.NumeroBultos }},
		{"aperturaBultos", func(f *FinalInspection) *string { return &f.AperturaBultos }},
		{"pesajeBultos", func(f *FinalInspection) *string { return &f.PesajeBultos }},
		{"detallePesos", func(f *FinalInspection) *string { return &f.DetallePesos }},
		{"marcasDetalle", func(f *FinalInspection) *string { return &f.MarcasDetalle }},
		{"fechaProduccionDetalle", func(f *FinalInspection) *string { return &f.FechaProduccionDetalle }},
		{"fechaCaducidadDetalle", func(f *FinalInspection) *string { return &f.FechaCaducidadDetalle }},
		{"lotesDetalle", func(f *FinalInspection) *string { return &f.LotesDetalle }},
		{"certificadosDetalle", func(f *FinalInspection) *string { return &f.CertificadosDetalle }},
		{"tomaMuestrasDetalle", func(f *FinalInspection) *string { return &f.TomaMuestrasDetalle }},
		{"pruebasLaboratorioDetalle", func(f *FinalInspection) *string { return &f.PruebasLaboratorioDetalle }},
		{"pesajeContenedorDetalle", func(f *FinalInspection) *string { return &f.PesajeContenedorDetalle }},
		{"tiqueOficialDetalle", func(f *FinalInspection) *string { return &f.TiqueOficialDetalle }},
		{"temperaturaContenedorDetalle", func(f *FinalInspection) *string { return &f.TemperaturaContenedorDetalle }},
		{"precintadoContenedorDetalle", func(f *FinalInspection) *string { return &f.PrecintadoContenedorDetalle }},
		{"precintoSeguridadDetalle", func(f *FinalInspection) *string { return &f.PrecintoSeguridadDetalle }},
		{"descripcionEstibaTexto", func(f *FinalInspection) *string { return &f.DescripcionEstibaTexto }},
		{"otrosHallazgos", func(f *FinalInspection) *string { return &f.OtrosHallazgos }},
		{"conclusiones", func(f *FinalInspection) *string { return &f.Conclusiones }},
		{"anexos", func(f *FinalInspection) *string { return &f.Anexos }},
		{"lugarFecha", func(f *FinalInspection) *string { return &f.LugarFecha }},
	},
	Switches: []SwitchField[FinalInspection]{
		{"senalesInternacionales", func(f *FinalInspection) *bool { return &f.SenalesInternacionales }},
	},
	Groups: []GroupField[FinalInspection]{
		{
			Key:     "viaTransporte",
			Options: []Option{{"aerea", "Aérea"}, {"maritima", "Marítima"}},
			Get:     func(f *FinalInspection) *Flags { return &f.ViaTransporte },
		},
		{
			Key:     "tipoCarga",
			Options: []Option{{"contenedor", "Contenedor"}, {"cargaAgrupada", "Carga Agrupada"}},
			Get:     func(f *FinalInspection) *Flags { return &f.TipoCarga },
		},
		{
			Key: "revisionContenedores",
			Options: []Option{
				{"limpios", "Limpios"},
				{"libresOlores", "Libres de olores"},
				{"sinAgujeros", "Sin agujeros/Roturas/Filtrado de luz"},
				{"sinOxido", "Sin óxido relevante"},
				{"cierrePuertas", "Cierre de puertas correcto"},
			},
			Get: func(f *FinalInspection) *Flags { return &f.RevisionContenedores },
		},
		{
			Key: "embalajeTipo",
			Options: []Option{
				{"huacal", "Huacal"},
				{"bidon", "Bidón"},
				{"caja", "Caja"},
				{"bandeja", "Bandeja"},
				{"atado", "Atado"},
				{"saco", "Saco"},
				{"rollo", "Rollo"},
				{"otros", "Otros"},
			},
			Get: func(f *FinalInspection) *Flags { return &f.EmbalajeTipo },
		},
		{
			Key: "embalajeMaterial",
			Options: []Option{
				{"carton", "Cartón"},
				{"madera", "Madera"},
				{"plastico", "Plástico"},
				{"metalico", "Metálico"},
				{"papel", "Papel"},
				{"kraft", "Kraft"},
				{"otro", "Otro"},
			},
			Get: func(f *FinalInspection) *Flags { return &f.EmbalajeMaterial },
		},
		{
			Key: "embalajePresentation",
			Options: []Option{
				{"paletizado", "Paletizado"},
				{"retractilado", "Retractilado"},
				{"flejado", "Flejado"},
				{"granel", "Granel"},
			},
			Get: func(f *FinalInspection) *Flags { return &f.EmbalajePresentation },
		},
	},
	TriGroups: []TriGroupField[FinalInspection]{
		{Key: "alcance", Items: ScopeItems, Get: func(f *FinalInspection) *TriStates { return &f.Alcance }},
	},
	Photos: []PhotoField[FinalInspection]{
		{"bultosFotos", BucketMercancia, func(f *FinalInspection) *PhotoList { return &f.BultosFotos }},
		{"marcasFotos", BucketMarcas, func(f *FinalInspection) *PhotoList { return &f.MarcasFotos }},
		{"precintadoFotos", BucketContenedor, func(f *FinalInspection) *PhotoList { return &f.PrecintadoFotos }},
	},
}
